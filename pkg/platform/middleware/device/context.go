// Package device identifies the browser client an onboarding draft belongs to.
package device

import "context"

type contextKeyClientID struct{}

// GetClientID retrieves the onboarding client identifier from the context.
func GetClientID(ctx context.Context) string {
	if clientID, ok := ctx.Value(contextKeyClientID{}).(string); ok {
		return clientID
	}
	return ""
}

// WithClientID injects an onboarding client identifier into a context.
// Useful for service unit tests that don't run the full HTTP middleware chain.
func WithClientID(ctx context.Context, clientID string) context.Context {
	return context.WithValue(ctx, contextKeyClientID{}, clientID)
}
