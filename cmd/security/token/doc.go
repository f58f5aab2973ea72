// Package token issues and verifies the signed bearer tokens that carry a
// user identity between requests.
//
// Tokens are RS256 JWTs with {sub, iat, exp} claims and a fixed session
// length (exp = iat + session length). The issued string already carries the
// "Bearer " scheme prefix so it can be used verbatim as an Authorization
// header value; Decode requires the same prefix.
//
// The codec is stateless: validity is signature + expiry only, there is no
// server-side token state and no revocation. Every verification failure --
// missing prefix, malformed payload, wrong algorithm, bad signature, expired
// -- collapses to ErrUnauthorized so callers cannot be used as an oracle for
// why a token was rejected.
//
// Keys are loaded once at startup and never rotate during the process
// lifetime.
package token
