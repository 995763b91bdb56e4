// Package wallet provides the agent-owned blockchain wallet: secp256k1
// keypair generation with address derivation, and a deterministic
// transaction-formatting signer. Signing here normalizes the payload into an
// EIP-1559 shaped body and marks it as signed; it does not produce a real
// cryptographic signature and never touches a network.
package wallet
