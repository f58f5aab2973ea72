// Package identity owns the user accounts and the social graph: registration,
// credential lookup for login, profile reads, partial profile updates, and
// follow/unfollow edges.
//
// It stores password hashes opaquely (hashing itself lives in
// security/password) and maps store-level failures onto stable, typed errors
// so the HTTP layer can translate them without string matching.
package identity
