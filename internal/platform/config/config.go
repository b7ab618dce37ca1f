package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates all runtime configuration. FromEnv builds it from
// environment variables so main stays lean.
type Config struct {
	Server        Server
	Postgres      Postgres
	Redis         Redis
	Kafka         Kafka
	Collaborators Collaborators
	Projection    Projection
	Dispatcher    Dispatcher
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string
}

// Postgres captures the aggregate store connection.
type Postgres struct {
	DSN string
}

// Redis captures the entity-configuration cache connection. An empty URL
// means caching is disabled and provider lookups go straight to the
// collaborator.
type Redis struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	ConfigTTL    time.Duration
}

// Kafka captures the domain-event publishing pipeline. Empty Brokers means
// the outbox is written but not drained by this process.
type Kafka struct {
	Brokers      []string
	Topic        string
	PollInterval time.Duration
	BatchSize    int
}

// Collaborators holds the base addresses of downstream services. An empty
// address disables the corresponding step rather than failing it.
type Collaborators struct {
	EntityConfigBaseURL string
	ChecklistBaseURL    string
	NotificationBaseURL string
	ProjectionBaseURL   string
	HTTPTimeout         time.Duration
}

// Projection tunes the read-model resynchronization pass.
type Projection struct {
	SettleDelay time.Duration
	Timeout     time.Duration
}

// Dispatcher sizes the downstream orchestration worker pool.
type Dispatcher struct {
	Workers     int
	QueueSize   int
	TaskTimeout time.Duration
}

// FromEnv builds a Config from environment variables with development
// defaults. Production overrides everything via the deployment environment.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr:          envString("INTAKE_ADDR", ":8080"),
			JWTSigningKey: envString("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			JWTIssuer:     envString("JWT_ISSUER", "onboarding-kyb"),
			JWTAudience:   envString("JWT_AUDIENCE", "onboarding-kyb-api"),
		},
		Postgres: Postgres{
			DSN: envString("POSTGRES_DSN", "postgres://localhost:5432/onboarding?sslmode=disable"),
		},
		Redis: Redis{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
			ConfigTTL:    envDuration("ENTITY_CONFIG_CACHE_TTL", 5*time.Minute),
		},
		Kafka: Kafka{
			Brokers:      envList("KAFKA_BROKERS"),
			Topic:        envString("KAFKA_CASE_EVENTS_TOPIC", "case-events"),
			PollInterval: envDuration("OUTBOX_POLL_INTERVAL", 2*time.Second),
			BatchSize:    envInt("OUTBOX_BATCH_SIZE", 100),
		},
		Collaborators: Collaborators{
			EntityConfigBaseURL: os.Getenv("ENTITY_CONFIG_BASE_URL"),
			ChecklistBaseURL:    os.Getenv("CHECKLIST_BASE_URL"),
			NotificationBaseURL: os.Getenv("NOTIFICATION_BASE_URL"),
			ProjectionBaseURL:   os.Getenv("PROJECTION_BASE_URL"),
			HTTPTimeout:         envDuration("COLLABORATOR_HTTP_TIMEOUT", 10*time.Second),
		},
		Projection: Projection{
			SettleDelay: envDuration("PROJECTION_SETTLE_DELAY", 3*time.Second),
			Timeout:     envDuration("PROJECTION_TIMEOUT", 30*time.Second),
		},
		Dispatcher: Dispatcher{
			Workers:     envInt("DISPATCHER_WORKERS", 4),
			QueueSize:   envInt("DISPATCHER_QUEUE_SIZE", 256),
			TaskTimeout: envDuration("DISPATCHER_TASK_TIMEOUT", 60*time.Second),
		},
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
