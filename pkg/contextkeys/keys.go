package contextkeys

type contextKey string

const (
	UserClaimsKey contextKey = "UserClaims"
	RequestIDKey  contextKey = "RequestID"
)
