package authz

import "errors"

// Configuration errors. Each pairs with a denied decision and signals a
// mismatch between calling code and the policy tables, never a business denial.
var (
	ErrUnknownRole     = errors.New("authz: unknown role")
	ErrUnknownModule   = errors.New("authz: unknown module")
	ErrUnknownResource = errors.New("authz: unknown resource")
	ErrUnknownAction   = errors.New("authz: unknown action")
	ErrIncompleteTable = errors.New("authz: incomplete permission table")
)

// IsConfigError reports whether err is one of the configuration errors above.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrUnknownRole) ||
		errors.Is(err, ErrUnknownModule) ||
		errors.Is(err, ErrUnknownResource) ||
		errors.Is(err, ErrUnknownAction) ||
		errors.Is(err, ErrIncompleteTable)
}
