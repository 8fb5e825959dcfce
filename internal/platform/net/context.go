// Package net provides utilities for working with request contexts
package net

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// ctxKey is an unexported key type for context values
type ctxKey string

const keyAdminID ctxKey = "admin_id"

// WithRequest annotates context with the request id
func WithRequest(ctx context.Context, reqID string) context.Context {
	if reqID != "" {
		// set chi RequestID so chimw.GetReqID can retrieve it
		ctx = context.WithValue(ctx, chimw.RequestIDKey, reqID)
	}
	return ctx
}

// WithAdmin annotates context with the authenticated admin id
func WithAdmin(ctx context.Context, adminID string) context.Context {
	if adminID != "" {
		ctx = context.WithValue(ctx, keyAdminID, adminID)
	}
	return ctx
}

// RequestID returns the request id on the context if present
func RequestID(ctx context.Context) string {
	return chimw.GetReqID(ctx)
}

// AdminID returns the authenticated admin id on the context if present
func AdminID(ctx context.Context) string {
	if v, ok := ctx.Value(keyAdminID).(string); ok {
		return v
	}
	return ""
}
