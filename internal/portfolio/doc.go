// Package portfolio implements the per-agent token ledger: an append-only
// transaction history with derived per-symbol balances and price-map
// valuation. Transactions are the source of truth; balances are a cache
// adjusted atomically with each append.
package portfolio
