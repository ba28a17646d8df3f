package auth

// APIKey is one key accepted on the relay route.
type APIKey struct {
	// Name identifies the caller in logs.
	Name string

	// Key is the resolved secret value.
	Key string

	// Enabled is false for keys kept in configuration but rejected.
	Enabled bool
}
