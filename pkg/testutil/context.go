package testutil

import (
	"net/http"

	id "onboarding/pkg/domain"
	"onboarding/pkg/requestcontext"
)

// WithSessionID adds a session ID to the request context, the way
// auth.RequireSession does for a valid bearer token.
// If the sessionID is not a valid UUID, it will not be added to the context.
func WithSessionID(req *http.Request, sessionID string) *http.Request {
	if parsedSessionID, err := id.ParseSessionID(sessionID); err == nil {
		return req.WithContext(requestcontext.WithSessionID(req.Context(), parsedSessionID))
	}
	return req
}

// WithBearer sets the Authorization header.
func WithBearer(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}
