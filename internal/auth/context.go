package auth

import "context"

type userIDContextKey struct{}

// ContextWithUserID stores the authenticated principal's id in the context.
// Handlers must source the user id ONLY from here, never from client input.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey{}, userID)
}

// UserIDFromContext returns the authenticated principal's id, or empty
// string if the request was not authenticated.
func UserIDFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(userIDContextKey{}).(string)
	return userID
}
