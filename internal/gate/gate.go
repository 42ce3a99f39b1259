// Package gate enforces account-state preconditions before privileged
// operations run.
package gate

import (
	"errors"

	"github.com/dtroode/authcore/internal/model"
)

// Decision is the outcome of admitting an identity lookup.
type Decision int

const (
	// NotFound means no identity matched the lookup.
	NotFound Decision = iota + 1
	// Banned means the identity exists but is disabled.
	Banned
	// Admitted means the identity exists and may proceed.
	Admitted
)

func (d Decision) String() string {
	switch d {
	case NotFound:
		return "not_found"
	case Banned:
		return "banned"
	case Admitted:
		return "admitted"
	default:
		return "unknown"
	}
}

// Admit applies the account policy to the result of an identity lookup.
// Existence is checked before ban status. Lookup errors other than
// model.ErrNotFound are returned unchanged and carry no decision.
func Admit(identity model.Identity, lookupErr error) (Decision, error) {
	if lookupErr != nil {
		if errors.Is(lookupErr, model.ErrNotFound) {
			return NotFound, nil
		}
		return 0, lookupErr
	}

	if identity.IsBanned {
		return Banned, nil
	}

	return Admitted, nil
}

// Err returns the outcome error for d: notFound for NotFound,
// model.ErrAccountBanned for Banned and nil for Admitted. Flows differ only in
// how they report a missing identity.
func (d Decision) Err(notFound error) error {
	switch d {
	case NotFound:
		return notFound
	case Banned:
		return model.ErrAccountBanned
	default:
		return nil
	}
}
