// Package ownership classifies the result of owner-guarded mutations.
//
// Every update or delete of a user-owned resource is issued as one statement
// that both mutates rows scoped by (key, owner) and probes for existence by
// key alone. The two booleans that come back map onto three outcomes:
//
//	existed  mutated  outcome
//	false    false    NotFound
//	true     false    Forbidden
//	true     true     Success
//	false    true     impossible -- ErrInconsistent
//
// Collapsing the permission check and the mutation into one statement removes
// the race window of a check-then-act sequence and keeps "does not exist"
// indistinguishable from "exists but not yours" on every channel except the
// explicit Forbidden outcome.
package ownership

import "errors"

// Outcome is the classified result of an owner-guarded mutation.
type Outcome int

const (
	// NotFound: no row matches the resource key.
	NotFound Outcome = iota
	// Forbidden: the resource exists but the caller does not own it.
	Forbidden
	// Success: the caller owns the resource and the mutation was applied.
	Success
)

// ErrInconsistent reports the impossible row state (mutated but not existed).
// Observing it means the guard statement or the store broke atomicity.
var ErrInconsistent = errors.New("ownership: mutation applied to a resource that did not exist")

// Classify maps the (existed-by-key, mutated-by-key-and-owner) pair from a
// guard statement onto an Outcome.
func Classify(existed, mutated bool) (Outcome, error) {
	switch {
	case mutated && existed:
		return Success, nil
	case mutated:
		return NotFound, ErrInconsistent
	case existed:
		return Forbidden, nil
	default:
		return NotFound, nil
	}
}

func (o Outcome) String() string {
	switch o {
	case NotFound:
		return "not_found"
	case Forbidden:
		return "forbidden"
	case Success:
		return "success"
	default:
		return "unknown"
	}
}
