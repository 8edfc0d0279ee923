package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values. Each field
// corresponds to an environment variable. Strings for identifiers
// and secrets, ints for durations and costs.
type Config struct {
	Env             string // application environment (e.g. "dev", "prod")
	Port            string // HTTP port to listen on
	BaseURL         string // public origin, used in emails and OAuth redirects
	DBUser          string // database username
	DBPass          string // database password (optional)
	DBHost          string // database host address
	DBPort          string // database port number
	DBName          string // database name
	SessionSecret   string // secret used to sign session cookies
	SessionTTLHrs   int    // session cookie time-to-live in hours
	ResetTTLMin     int    // password-reset token time-to-live in minutes
	MagicTTLMin     int    // magic-link token time-to-live in minutes
	BcryptCost      int    // bcrypt cost for password hashing
	GoogleClientID  string // OAuth client id for Google ("" disables the flow)
	GoogleSecret    string // OAuth client secret for Google
	DiscordClientID string // OAuth client id for Discord ("" disables the flow)
	DiscordSecret   string // OAuth client secret for Discord
}

// Load reads configuration values from environment variables and
// returns a Config. A .env file is applied first when present so
// local development does not need exported variables. Required
// variables are enforced by must() and missing values cause the
// program to exit with a fatal log message.
func Load() Config {
	_ = godotenv.Load() // missing .env is fine in prod

	return Config{
		Env:             must("APP_ENV"),
		Port:            must("APP_PORT"),
		BaseURL:         envStr("APP_BASE_URL", "http://localhost:8080"),
		DBUser:          must("DB_USER"),
		DBPass:          os.Getenv("DB_PASS"), // empty allowed
		DBHost:          must("DB_HOST"),
		DBPort:          must("DB_PORT"),
		DBName:          must("DB_NAME"),
		SessionSecret:   must("SESSION_SECRET"),
		SessionTTLHrs:   envInt("SESSION_TTL_HOURS", 24*7),
		ResetTTLMin:     envInt("RESET_TOKEN_TTL_MIN", 60),
		MagicTTLMin:     envInt("MAGIC_LINK_TTL_MIN", 15),
		BcryptCost:      mustInt("BCRYPT_COST"),
		GoogleClientID:  os.Getenv("OAUTH_GOOGLE_CLIENT_ID"),
		GoogleSecret:    os.Getenv("OAUTH_GOOGLE_CLIENT_SECRET"),
		DiscordClientID: os.Getenv("OAUTH_DISCORD_CLIENT_ID"),
		DiscordSecret:   os.Getenv("OAUTH_DISCORD_CLIENT_SECRET"),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
