// Package keys turns root secrets into Ed25519 key pairs and child seeds.
//
// API stability:
//
// Stable (compatibility contract):
//   - DeriveChildSeed, GenKeyPairFromSeed, and the hex conventions. Two
//     independent implementations fed the same seed must produce identical
//     key pairs.
//
// Convenience:
//   - Seed file helpers for CLI use. They store the root secret only; no
//     derived key is ever persisted.
package keys
