// Package session maps session tokens to authenticated users.
package session

import "context"

// State is the per-request session. The zero value is anonymous.
type State struct {
	Token         string
	UserID        int64
	Authenticated bool
}

// Anonymous is the state of a request without a valid session
var Anonymous = State{}

// AuthenticatedAs returns the state for a logged in user
func AuthenticatedAs(token string, userID int64) State {
	return State{Token: token, UserID: userID, Authenticated: true}
}

type contextKey struct{}

// WithState stores the session state in ctx
func WithState(ctx context.Context, s State) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session state stored in ctx, or Anonymous
func FromContext(ctx context.Context) State {
	if s, ok := ctx.Value(contextKey{}).(State); ok {
		return s
	}
	return Anonymous
}
