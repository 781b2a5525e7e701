// Package password implements the credential verifier: argon2id hashing and
// constant-time verification.
//
// Hashes are encoded in PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// [Argon2.NeedsUpgrade] reports hashes produced with weaker parameters so the
// caller can re-hash after the next successful login.
//
// This package never stores, logs or returns plaintext passwords.
package password
