package mw

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// OperationOption is a function that modifies an operation.
type OperationOption func(*huma.Operation)

// WithTags adds tags to the operation.
func WithTags(tags ...string) OperationOption {
	return func(op *huma.Operation) {
		op.Tags = append(op.Tags, tags...)
	}
}

// WithDescription sets the operation description.
func WithDescription(desc string) OperationOption {
	return func(op *huma.Operation) {
		op.Description = desc
	}
}

// WithSummary sets the operation summary.
func WithSummary(summary string) OperationOption {
	return func(op *huma.Operation) {
		op.Summary = summary
	}
}

// WithOperationID sets a custom operation ID.
func WithOperationID(id string) OperationOption {
	return func(op *huma.Operation) {
		op.OperationID = id
	}
}

// WithStatus sets the default success status code.
func WithStatus(status int) OperationOption {
	return func(op *huma.Operation) {
		op.DefaultStatus = status
	}
}

// WithMaxBodyBytes overrides huma's request body limit.
func WithMaxBodyBytes(n int64) OperationOption {
	return func(op *huma.Operation) {
		op.MaxBodyBytes = n
	}
}

// WithHidden hides the operation from OpenAPI documentation.
func WithHidden() OperationOption {
	return func(op *huma.Operation) {
		op.Hidden = true
	}
}

func register[I, O any](api huma.API, op huma.Operation, handler func(ctx context.Context, input *I) (*O, error), opts []OperationOption) {
	for _, opt := range opts {
		opt(&op)
	}
	huma.Register(api, op, handler)
}

func protected() []map[string][]string {
	return []map[string][]string{{SecurityScheme: {}}}
}

// PublicGet registers a public GET endpoint (no auth required).
func PublicGet[I, O any](api huma.API, path string, handler func(ctx context.Context, input *I) (*O, error), opts ...OperationOption) {
	register(api, huma.Operation{Method: http.MethodGet, Path: path}, handler, opts)
}

// PublicPost registers a public POST endpoint (no auth required).
func PublicPost[I, O any](api huma.API, path string, handler func(ctx context.Context, input *I) (*O, error), opts ...OperationOption) {
	register(api, huma.Operation{Method: http.MethodPost, Path: path}, handler, opts)
}

// ProtectedGet registers a GET endpoint that requires a session token.
func ProtectedGet[I, O any](api huma.API, path string, handler func(ctx context.Context, input *I) (*O, error), opts ...OperationOption) {
	register(api, huma.Operation{Method: http.MethodGet, Path: path, Security: protected()}, handler, opts)
}

// ProtectedPost registers a POST endpoint that requires a session token.
func ProtectedPost[I, O any](api huma.API, path string, handler func(ctx context.Context, input *I) (*O, error), opts ...OperationOption) {
	register(api, huma.Operation{Method: http.MethodPost, Path: path, Security: protected()}, handler, opts)
}

// ProtectedPut registers a PUT endpoint that requires a session token.
func ProtectedPut[I, O any](api huma.API, path string, handler func(ctx context.Context, input *I) (*O, error), opts ...OperationOption) {
	register(api, huma.Operation{Method: http.MethodPut, Path: path, Security: protected()}, handler, opts)
}

// ProtectedDelete registers a DELETE endpoint that requires a session token.
func ProtectedDelete[I, O any](api huma.API, path string, handler func(ctx context.Context, input *I) (*O, error), opts ...OperationOption) {
	register(api, huma.Operation{Method: http.MethodDelete, Path: path, Security: protected()}, handler, opts)
}

// HiddenGet registers a GET endpoint that won't appear in OpenAPI docs.
// Used for internal endpoints like K8s probes.
func HiddenGet[I, O any](api huma.API, path string, handler func(ctx context.Context, input *I) (*O, error)) {
	register(api, huma.Operation{Method: http.MethodGet, Path: path, Hidden: true}, handler, nil)
}
