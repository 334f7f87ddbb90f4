package utils

type contextKey struct {
	name string
}

func (k *contextKey) String() string {
	return k.name
}

// PrincipalKey is the key under which the resolved authentication principal
// is stored in the request context.
var PrincipalKey = &contextKey{"principal"}

// BearerTokenKey is the key under which the raw presented bearer token is
// stored, so logout can delete the exact credential it was called with.
var BearerTokenKey = &contextKey{"bearerToken"}

// TraceIdKey is the key under which the request trace id is stored.
var TraceIdKey = &contextKey{"traceId"}

// SanitizedPayloadKey is the key under which the validated request body is stored.
var SanitizedPayloadKey = &contextKey{"sanitizedPayload"}
