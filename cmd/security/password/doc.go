// Package password hashes and verifies user credentials with Argon2id.
//
// Stored credentials use a PHC-like self-describing encoding:
//
//	$argon2id$v=19$m=<mem_kib>,t=<iterations>,p=<parallelism>$<salt_b64>$<hash_b64>
//
// Verification re-derives the key with the parameters embedded in the stored
// string and compares in constant time. A malformed stored string is a server
// fault (ErrInvalidHash) and must never be reported the same way as a wrong
// password. Stored strings are treated as untrusted input: Verify refuses
// parameters far outside the configured cost to keep hostile rows from
// driving pathological resource usage.
package password
