// Package agent defines the economic agent aggregate: a uniquely identified
// entity owning an optional wallet, an optional token portfolio, and a reward
// ledger. The agent itself performs no validation; it exposes bookkeeping
// operations that the dispatch layer guards.
package agent
