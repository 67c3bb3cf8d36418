// Package token provides cryptographically secure identifier generation.
//
// Session identifiers are hex encoded random bytes:
//
//   - Entropy: 32 bytes from crypto/rand
//   - Encoding: lowercase hexadecimal
//   - Length: 64 characters
//
// No uniqueness check is performed against existing storage; with 256 bits
// of entropy the collision probability is negligible.
package token
