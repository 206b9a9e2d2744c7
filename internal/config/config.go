package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. The types reflect how the values are used in the
// application: strings for identifiers and secrets, ints for durations and
// costs.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	DBMaxOpen      int    // connection pool: max open connections
	DBMaxIdle      int    // connection pool: max idle connections
	DBConnLifetime time.Duration
	JWTSecret      string // secret used to sign session JWTs
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing

	// Action-token (activation / password-reset link) settings. Rotating
	// TokenSecret invalidates every outstanding link.
	TokenSecret   string // secret used to sign action tokens
	TokenTTLHours int    // validity window for activation/reset links
	ActivateURL   string // frontend activation page, link gets /{uidb64}/{token}/ appended
	ResetURL      string // frontend reset page, link gets /{uidb64}/{token}/ appended

	// Mail transport settings.
	SMTPHost        string        // mail relay host
	SMTPPort        int           // mail relay port
	SMTPUsername    string        // relay auth user (optional)
	SMTPPassword    string        // relay auth password (optional)
	SMTPFrom        string        // From header on outgoing mail
	MailSendTimeout time.Duration // bound on a single delivery
	MailFailSilent  bool          // swallow transport errors instead of failing requests
}

// Load reads configuration values from environment variables and returns a
// Config. Required variables are enforced by must() and missing values cause
// the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"), // empty allowed
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		DBMaxOpen:      envInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdle:      envInt("DB_MAX_IDLE_CONNS", 25),
		DBConnLifetime: envDur("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     mustInt("BCRYPT_COST"),

		TokenSecret:   must("TOKEN_SECRET"),
		TokenTTLHours: envInt("TOKEN_TTL_HOURS", 72),
		ActivateURL:   envStr("ACTIVATE_URL_BASE", "http://localhost:3000/activate"),
		ResetURL:      envStr("RESET_URL_BASE", "http://localhost:3000/password-reset-confirm"),

		SMTPHost:        must("SMTP_HOST"),
		SMTPPort:        mustInt("SMTP_PORT"),
		SMTPUsername:    os.Getenv("SMTP_USERNAME"),
		SMTPPassword:    os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:        must("SMTP_FROM"),
		MailSendTimeout: envDur("MAIL_SEND_TIMEOUT", 10*time.Second),
		MailFailSilent:  envBool("MAIL_FAIL_SILENT", false),
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
