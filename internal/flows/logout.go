package flows

import "context"

// LogoutDeps captures forced-logout dependencies.
type LogoutDeps struct {
	// ClearPair removes the token pair from storage, including the
	// shared-domain scope. Must be idempotent.
	ClearPair func(ctx context.Context) error

	// Navigate sends the user to the login entry point. Optional.
	Navigate func(loginURL string)

	LoginURL string
}

// RunLogout clears credentials and navigates to the login entry point.
// Navigation happens even when the clear fails: a user with wedged
// storage must still land on the login page rather than a dead session.
func RunLogout(ctx context.Context, deps LogoutDeps) error {
	err := deps.ClearPair(ctx)
	if deps.Navigate != nil {
		deps.Navigate(deps.LoginURL)
	}
	return err
}
