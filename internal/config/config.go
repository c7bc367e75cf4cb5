package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

type config struct {
	Production          bool          `env:"PRODUCTION" envDefault:"false"`
	Port                string        `env:"PORT" envDefault:"80"`
	PostgresUrl         string        `env:"POSTGRES_URL,required"`
	RedisUrl            string        `env:"REDIS_URL" envDefault:"redis:6379"`
	JwtTTL              time.Duration `env:"TOKEN_TTL" envDefault:"20m"`
	Secret              string        `env:"SECRET,required"`
	SessionTTl          time.Duration `env:"SESSION_TTL" envDefault:"168h"`
	SessionTokenLength  int           `env:"SESSION_TOKEN_LENGTH" envDefault:"32"`
	ClientSecretPath    string        `env:"CLIENT_SECRET_PATH" envDefault:"secrets/client_secret.json"`
	RedirectURL         string        `env:"REDIRECT_URL" envDefault:""`
	ClientType          string        `env:"CLIENT_TYPE" envDefault:"web"`
	AllowedOrigins      []string      `env:"ALLOWED_ORIGINS" envSeparator:","`
	FirebaseCredentials string        `env:"FIREBASE_CREDENTIALS" envDefault:"secrets/firebase.json"`
	RemindersEnabled    bool          `env:"REMINDERS_ENABLED" envDefault:"false"`
	ReminderLead        time.Duration `env:"REMINDER_LEAD" envDefault:"15m"`
	SyncSchedule        string        `env:"SYNC_SCHEDULE" envDefault:"@every 15m"`
	SyncConcurrency     int           `env:"SYNC_CONCURRENCY" envDefault:"4"`
	SyncTimeout         time.Duration `env:"SYNC_TIMEOUT" envDefault:"10m"`
	ICSFetchTimeout     time.Duration `env:"ICS_FETCH_TIMEOUT" envDefault:"30s"`
	DefaultEventsLimit  int           `env:"DEFAULT_EVENTS_LIMIT" envDefault:"250"`
}

var conf config

func init() {
	// A missing .env is fine, the environment is used as is.
	_ = godotenv.Load()

	if err := env.Parse(&conf); err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
}

func Production() bool {
	return conf.Production
}

func Port() string {
	return conf.Port
}

func PostgresURL() string {
	return conf.PostgresUrl
}

func RedisURL() string {
	return conf.RedisUrl
}

func JwtTTL() time.Duration {
	return conf.JwtTTL
}

func Secret() string {
	return conf.Secret
}

func SessionTTl() time.Duration {
	return conf.SessionTTl
}

func SessionTokenLength() int {
	return conf.SessionTokenLength
}

func ClientSecretPath() string {
	return conf.ClientSecretPath
}

func RedirectURL() string {
	return conf.RedirectURL
}

func ClientType() string {
	return conf.ClientType
}

func AllowedOrigins() []string {
	return conf.AllowedOrigins
}

func FirebaseCredentials() string {
	return conf.FirebaseCredentials
}

func RemindersEnabled() bool {
	return conf.RemindersEnabled
}

func ReminderLead() time.Duration {
	return conf.ReminderLead
}

func SyncSchedule() string {
	return conf.SyncSchedule
}

func SyncConcurrency() int {
	return conf.SyncConcurrency
}

func SyncTimeout() time.Duration {
	return conf.SyncTimeout
}

func ICSFetchTimeout() time.Duration {
	return conf.ICSFetchTimeout
}

func DefaultEventsLimit() int {
	return conf.DefaultEventsLimit
}
