// Package dispatch maps incoming operation requests onto a caller-scoped
// economic agent and normalizes every outcome into a uniform response
// envelope. It is the single place that validates transactions before they
// reach the ledger; malformed input is always answered with a structured
// error envelope, never a fault.
package dispatch
