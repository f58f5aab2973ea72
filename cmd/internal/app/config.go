package app

import "time"

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	HTTPAddr  string
	LogLevel  string
	LogFormat string

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	MaxBodyBytes      int64

	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	// RSA keypair for signing and verifying identity tokens.
	RSAPrivateKeyPath string
	RSAPublicKeyPath  string
	SessionLength     time.Duration

	// If true, /readyz returns 503 unless the DB is reachable.
	ReadinessRequireDB bool
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		HTTPAddr:  EnvString("CONDUIT_HTTP_ADDR", "0.0.0.0:8080"),
		LogLevel:  EnvString("CONDUIT_LOG_LEVEL", "info"),
		LogFormat: EnvString("CONDUIT_LOG_FORMAT", "json"),

		ReadHeaderTimeout: EnvDuration("CONDUIT_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("CONDUIT_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("CONDUIT_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("CONDUIT_HTTP_IDLE_TIMEOUT", 60*time.Second),

		MaxHeaderBytes: EnvInt("CONDUIT_HTTP_MAX_HEADER_BYTES", 1<<20),
		MaxBodyBytes:   int64(EnvInt("CONDUIT_HTTP_MAX_BODY_BYTES", 1<<20)),

		DatabaseURL: EnvString("CONDUIT_DATABASE_URL", ""),
		DBMaxConns:  EnvInt32("CONDUIT_DB_MAX_CONNS", 10),
		DBMinConns:  EnvInt32("CONDUIT_DB_MIN_CONNS", 0),

		RSAPrivateKeyPath: EnvString("CONDUIT_RSA_PRIVATE_KEY", "keys/private.pem"),
		RSAPublicKeyPath:  EnvString("CONDUIT_RSA_PUBLIC_KEY", "keys/public.pem"),
		SessionLength:     EnvDuration("CONDUIT_AUTH_SESSION_LENGTH", 14*24*time.Hour),

		ReadinessRequireDB: EnvBool("CONDUIT_READINESS_REQUIRE_DB", true),
	}
}
