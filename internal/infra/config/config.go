package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	App       AppSettings       `mapstructure:"app"`
	Gate      GateSettings      `mapstructure:"gate"`
	CSRF      CSRFSettings      `mapstructure:"csrf"`
	Postgres  PostgresSettings  `mapstructure:"postgres"`
	Redis     RedisSettings     `mapstructure:"redis"`
	Kafka     KafkaSettings     `mapstructure:"kafka"`
	Audit     AuditSettings     `mapstructure:"audit"`
	Telemetry TelemetrySettings `mapstructure:"telemetry"`
}

type AppSettings struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// GateSettings configures the rate-limit gates. Every numeric constant of the
// limiter lives here; nothing is hard-coded in the engine.
type GateSettings struct {
	Store                       string        `mapstructure:"store"`
	BaseDelay                   time.Duration `mapstructure:"base_delay"`
	MaxDelay                    time.Duration `mapstructure:"max_delay"`
	Window                      time.Duration `mapstructure:"window"`
	LockoutDuration             time.Duration `mapstructure:"lockout_duration"`
	RetentionHorizon            time.Duration `mapstructure:"retention_horizon"`
	JanitorInterval             time.Duration `mapstructure:"janitor_interval"`
	LoginMaxAttempts            int           `mapstructure:"login_max_attempts"`
	PasswordResetMaxAttempts    int           `mapstructure:"password_reset_max_attempts"`
	SecurityQuestionMaxAttempts int           `mapstructure:"security_question_max_attempts"`
}

// CSRFSettings configures the anti-forgery token codec and gate.
type CSRFSettings struct {
	Scheme      string        `mapstructure:"scheme"`
	Secret      string        `mapstructure:"secret"`
	MaxAge      time.Duration `mapstructure:"max_age"`
	ExemptPaths []string      `mapstructure:"exempt_paths"`
}

type PostgresSettings struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// RedisSettings configures the optional Redis attempt-store backend.
type RedisSettings struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	DB         int    `mapstructure:"db"`
	Password   string `mapstructure:"password"`
	TLSEnabled bool   `mapstructure:"tls_enabled"`
	KeyPrefix  string `mapstructure:"key_prefix"`
}

// KafkaSettings configures the audit event publisher.
type KafkaSettings struct {
	Brokers     []string `mapstructure:"brokers"`
	TopicPrefix string   `mapstructure:"topic_prefix"`
}

// AuditSettings toggles persistent storage of security events.
type AuditSettings struct {
	Persist bool `mapstructure:"persist"`
}

type TelemetrySettings struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	ServiceName  string  `mapstructure:"service_name"`
	SamplingRate float64 `mapstructure:"sampling_rate"`
}

func Load() (*AppConfig, error) {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("CT")

	setDefaults(v)

	if err := bindEnvs(v, []string{
		"app.name",
		"app.env",
		"app.host",
		"app.port",
		"gate.store",
		"gate.base_delay",
		"gate.max_delay",
		"gate.window",
		"gate.lockout_duration",
		"gate.retention_horizon",
		"gate.janitor_interval",
		"gate.login_max_attempts",
		"gate.password_reset_max_attempts",
		"gate.security_question_max_attempts",
		"csrf.scheme",
		"csrf.secret",
		"csrf.max_age",
		"csrf.exempt_paths",
		"postgres.host",
		"postgres.port",
		"postgres.user",
		"postgres.password",
		"postgres.database",
		"postgres.ssl_mode",
		"postgres.max_conns",
		"postgres.min_conns",
		"postgres.max_conn_lifetime",
		"postgres.max_conn_idle_time",
		"redis.host",
		"redis.port",
		"redis.db",
		"redis.password",
		"redis.tls_enabled",
		"redis.key_prefix",
		"kafka.brokers",
		"kafka.topic_prefix",
		"audit.persist",
		"telemetry.otlp_endpoint",
		"telemetry.service_name",
		"telemetry.sampling_rate",
	}); err != nil {
		return nil, err
	}

	v.AutomaticEnv()

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validate catches programmer/operator misconfiguration at startup so the
// gates never have to deal with it per request.
func (c *AppConfig) validate() error {
	switch c.Gate.Store {
	case "memory", "redis":
	default:
		return fmt.Errorf("gate.store must be \"memory\" or \"redis\", got %q", c.Gate.Store)
	}

	switch c.CSRF.Scheme {
	case "timestamp":
	case "hmac":
		if c.CSRF.Secret == "" {
			return fmt.Errorf("csrf.secret is required when csrf.scheme is \"hmac\"")
		}
	default:
		return fmt.Errorf("csrf.scheme must be \"timestamp\" or \"hmac\", got %q", c.CSRF.Scheme)
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "career-tracker-gate")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8080)

	v.SetDefault("gate.store", "memory")
	v.SetDefault("gate.base_delay", "1s")
	v.SetDefault("gate.max_delay", "30s")
	v.SetDefault("gate.window", "15m")
	v.SetDefault("gate.lockout_duration", "15m")
	v.SetDefault("gate.retention_horizon", "24h")
	v.SetDefault("gate.janitor_interval", "1h")
	v.SetDefault("gate.login_max_attempts", 5)
	v.SetDefault("gate.password_reset_max_attempts", 3)
	v.SetDefault("gate.security_question_max_attempts", 5)

	v.SetDefault("csrf.scheme", "timestamp")
	v.SetDefault("csrf.secret", "")
	v.SetDefault("csrf.max_age", "1h")
	v.SetDefault("csrf.exempt_paths", []string{})

	v.SetDefault("postgres.host", "")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "careertracker")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.database", "careertracker")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.min_conns", 2)
	v.SetDefault("postgres.max_conn_lifetime", "60m")
	v.SetDefault("postgres.max_conn_idle_time", "15m")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.tls_enabled", false)
	v.SetDefault("redis.key_prefix", "ct:gate:attempts")

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic_prefix", "careertracker")

	v.SetDefault("audit.persist", false)

	v.SetDefault("telemetry.otlp_endpoint", "")
	v.SetDefault("telemetry.service_name", "career-tracker-gate")
	v.SetDefault("telemetry.sampling_rate", 1.0)
}

func bindEnvs(v *viper.Viper, keys []string) error {
	for _, key := range keys {
		envKey := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, "CT_"+envKey, envKey); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}
	return nil
}
