package httpapi

import "aardd/internal/lookup"

// maxBodyBytes controls the maximum allowed request body size for JSON endpoints.
var maxBodyBytes int64 = 1 << 20

// SetMaxBodyBytes allows configuring the maximum request body size.
func SetMaxBodyBytes(n int64) {
	if n <= 0 {
		maxBodyBytes = 1 << 20
		return
	}
	maxBodyBytes = n
}

// defaultPageSize is the number of entries GET /lookup returns without ?limit.
var defaultPageSize = 50

// SetPageSize sets the default lookup page size (non-positive restores 50).
func SetPageSize(n int) {
	if n <= 0 {
		defaultPageSize = 50
		return
	}
	defaultPageSize = n
}

// maxLookupLimit caps ?limit and ?offset on GET /lookup. No result holds
// more entries than the coordinator's lookup limit.
var maxLookupLimit = lookup.DefaultLimit

// SetLookupLimit sets the cap (non-positive restores lookup.DefaultLimit).
func SetLookupLimit(n int) {
	if n <= 0 {
		maxLookupLimit = lookup.DefaultLimit
		return
	}
	maxLookupLimit = n
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
