package password

import "errors"

// ErrInvalidHash reports a malformed or unsupported stored credential.
// Callers must surface this as a server fault, not as a failed login.
var ErrInvalidHash = errors.New("invalid password hash")
