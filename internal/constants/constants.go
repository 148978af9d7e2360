package constants

// Authentication
const (
	MinPasswordLength       = 6
	DefaultTokenTTLMinutes  = 30
	ContextKeyPrincipal     = "principal"
	ContextKeyRequestID     = "request_id"
	AuthorizationHeader     = "Authorization"
	BearerPrefix            = "Bearer "
)

// Pagination
const (
	MinPage         = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)
