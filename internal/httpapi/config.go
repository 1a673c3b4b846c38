package httpapi

// maxBodyBytes controls the maximum allowed request body size for the
// invocation endpoint. The default matches the platform's payload cap.
var maxBodyBytes int64 = 25 << 20

// SetMaxBodyBytes allows configuring the maximum request body size.
func SetMaxBodyBytes(n int64) {
	if n <= 0 {
		maxBodyBytes = 25 << 20
		return
	}
	maxBodyBytes = n
}

// invocationTimeout bounds how long one invocation may run before being
// canceled. Zero means no additional timeout beyond server/connection
// timeouts; generation can legitimately run for minutes.
var invocationTimeout = int64(0) // seconds

// SetInvocationTimeoutSeconds sets the invocation timeout in seconds (0 disables).
func SetInvocationTimeoutSeconds(sec int64) {
	if sec < 0 {
		sec = 0
	}
	invocationTimeout = sec
}

// CORS configuration (opt-in). If disabled, no CORS middleware is added.
var (
	corsEnabled        bool
	corsAllowedOrigins []string
	corsAllowedMethods []string
	corsAllowedHeaders []string
)

// SetCORSOptions configures CORS behavior for the HTTP server.
func SetCORSOptions(enabled bool, origins, methods, headers []string) {
	corsEnabled = enabled
	corsAllowedOrigins = append([]string(nil), origins...)
	corsAllowedMethods = append([]string(nil), methods...)
	corsAllowedHeaders = append([]string(nil), headers...)
}
