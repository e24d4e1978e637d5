package config // package config loads application configuration from environment variables

import (
    "log"
    "os"
    "time"
)

// Config holds all runtime configuration values.  Each field corresponds
// to an environment variable.  The booking engine runs self-contained on
// the in-memory seat store by default; MySQL, Redis and RabbitMQ are
// opt-in through their respective variables.
type Config struct {
    Env           string        // application environment (e.g. "dev", "prod")
    Port          string        // HTTP port to listen on
    StoreBackend  string        // seat store backend: "memory" or "mysql"
    DBUser        string        // database username
    DBPass        string        // database password (optional)
    DBHost        string        // database host; empty disables MySQL entirely
    DBPort        string        // database port number
    DBName        string        // database name
    JWTSecret     string        // secret for verifying bearer tokens; empty disables auth
    HoldTTL       time.Duration // how long a seat hold stays live
    SweepInterval time.Duration // cadence of the background expiry sweeper
    HoldRetention time.Duration // how long terminal hold records are kept
    QueueEnabled  bool          // publish/consume reservation.confirmed events
}

// Load reads configuration from the environment.  Every value has a
// default so the server can start with no environment at all; an invalid
// duration is a fatal error because silently substituting one would
// change hold semantics.
func Load() Config {
    cfg := Config{
        Env:           getenv("APP_ENV", "dev"),
        Port:          getenv("APP_PORT", "3000"),
        StoreBackend:  getenv("STORE_BACKEND", "memory"),
        DBUser:        os.Getenv("DB_USER"),
        DBPass:        os.Getenv("DB_PASS"),
        DBHost:        os.Getenv("DB_HOST"),
        DBPort:        getenv("DB_PORT", "3306"),
        DBName:        getenv("DB_NAME", "venue_booking"),
        JWTSecret:     os.Getenv("JWT_SECRET"),
        HoldTTL:       mustDur("HOLD_TTL", "10m"),
        SweepInterval: mustDur("SWEEP_INTERVAL", "30s"),
        HoldRetention: mustDur("HOLD_RETENTION", "1h"),
        QueueEnabled:  envBool("QUEUE_ENABLED", false),
    }
    if cfg.StoreBackend == "mysql" && cfg.DBHost == "" {
        log.Fatalf("STORE_BACKEND=mysql requires DB_HOST to be set")
    }
    return cfg
}

// mustDur parses a duration env var, falling back to def when unset and
// exiting when the value does not parse.
func mustDur(key, def string) time.Duration {
    v := getenv(key, def)
    d, err := time.ParseDuration(v)
    if err != nil || d <= 0 {
        log.Fatalf("invalid duration for %s: %q", key, v)
    }
    return d
}
