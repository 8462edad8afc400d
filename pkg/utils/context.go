package utils

type ContextKey string

const (
	UserKey    ContextKey = "user"
	ServiceKey ContextKey = "service_key"
	UserIDKey  string     = "user_id"
	RoleKey    string     = "role"
	ExpKey     string     = "exp"
)
