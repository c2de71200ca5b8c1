package testutil

import (
	"context"
	"net/http"

	"tally/internal/platform/middleware"
	id "tally/pkg/domain"
	"tally/pkg/requestcontext"
)

// WithActor adds an authenticated actor to the request context, simulating
// what the auth middleware does for a valid bearer token.
func WithActor(req *http.Request, actor id.Actor) *http.Request {
	return req.WithContext(middleware.WithActor(req.Context(), actor))
}

// WithRequestID adds a correlation ID to the request context, simulating the
// request ID middleware.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}

// ActorContext builds a bare context carrying an actor, for service-level
// tests that skip the HTTP layer.
func ActorContext(actor id.Actor) context.Context {
	return middleware.WithActor(context.Background(), actor)
}
