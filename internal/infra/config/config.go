// internal/infra/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Store backends.
const (
	BackendFirestore = "firestore"
	BackendMemory    = "memory"
)

// Config holds the process configuration read from the environment.
type Config struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	CORSOrigins     []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	// firestore | memory
	StoreBackend string `env:"STORE_BACKEND" envDefault:"firestore"`

	// Project id sources, in priority order (see ProjectID).
	FirestoreProjectID string `env:"FIRESTORE_PROJECT_ID"`
	GCPProjectID       string `env:"GCP_PROJECT_ID"`
	GoogleCloudProject string `env:"GOOGLE_CLOUD_PROJECT"`
	FirebaseProjectID  string `env:"FIREBASE_PROJECT_ID"`

	FirestoreCredentialsFile string `env:"FIRESTORE_CREDENTIALS_FILE"`
	GCPCreds                 string `env:"GOOGLE_APPLICATION_CREDENTIALS"`

	ProductImageBucket string `env:"PRODUCT_IMAGE_BUCKET"`

	// API keys: either the value itself or a Secret Manager secret id.
	GeminiAPIKey         string `env:"GEMINI_API_KEY"`
	GeminiAPIKeySecret   string `env:"GEMINI_API_KEY_SECRET"`
	GeminiModel          string `env:"GEMINI_MODEL" envDefault:"gemini-1.5-flash"`
	SendGridAPIKey       string `env:"SENDGRID_API_KEY"`
	SendGridAPIKeySecret string `env:"SENDGRID_API_KEY_SECRET"`
	MailFrom             string `env:"SENDGRID_FROM"`
	MailFromName         string `env:"SENDGRID_FROM_NAME" envDefault:"Coplace"`

	// memory backend only: "token=uid|Display Name|email" entries
	DevTokens []string `env:"DEV_TOKENS" envSeparator:","`
}

// Load reads the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}
	cfg.StoreBackend = strings.ToLower(strings.TrimSpace(cfg.StoreBackend))
	switch cfg.StoreBackend {
	case BackendFirestore, BackendMemory:
	default:
		return nil, fmt.Errorf("config: STORE_BACKEND must be %q or %q, got %q", BackendFirestore, BackendMemory, cfg.StoreBackend)
	}
	return cfg, nil
}

// ProjectID resolves the GCP project:
// FIRESTORE_PROJECT_ID > GCP_PROJECT_ID > GOOGLE_CLOUD_PROJECT > FIREBASE_PROJECT_ID.
func (c *Config) ProjectID() string {
	for _, v := range []string{c.FirestoreProjectID, c.GCPProjectID, c.GoogleCloudProject, c.FirebaseProjectID} {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// CredentialsFile is the explicit credentials file, if any (local dev).
func (c *Config) CredentialsFile() string {
	if f := strings.TrimSpace(c.FirestoreCredentialsFile); f != "" {
		return f
	}
	return strings.TrimSpace(c.GCPCreds)
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return ":" + strings.TrimPrefix(strings.TrimSpace(c.Port), ":")
}
