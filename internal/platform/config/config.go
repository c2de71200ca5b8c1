package config

import (
	"os"
	"strconv"
)

// Server captures process-level configuration.
type Server struct {
	Addr          string
	DatabaseURL   string
	JWTSigningKey string
	// AuditBuffer bounds the audit recorder inbox. A full inbox applies
	// backpressure to mutating requests rather than dropping records.
	AuditBuffer int
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("TALLY_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	databaseURL := os.Getenv("DATABASE_URL")

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	auditBuffer := 256
	if raw := os.Getenv("AUDIT_BUFFER"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			auditBuffer = parsed
		}
	}

	return Server{
		Addr:          addr,
		DatabaseURL:   databaseURL,
		JWTSigningKey: jwtSigningKey,
		AuditBuffer:   auditBuffer,
	}
}
