package common

const (
	// AuthorizationHeaderName is the request header (HTTP) or metadata key
	// (gRPC) carrying the bearer credential. Lookups are case-insensitive.
	AuthorizationHeaderName = "Authorization"

	// BearerScheme is the only accepted authorization scheme.
	BearerScheme = "Bearer"
)
