package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

const (
	CuratorModeVision   = "vision"
	CuratorModeMetadata = "metadata"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort string `env:"HTTP_PORT" envDefault:"8080"`
	// Origenes del navegador habilitados para CORS, separados por coma.
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	DatabaseURL        string   `env:"DATABASE_URL,required"`
	MigrationsEnabled  bool     `env:"MIGRATIONS_ENABLED" envDefault:"true"`
	DBMaxConns         int      `env:"DB_MAX_CONNS" envDefault:"4"`

	LLMAPIKey      string        `env:"LLM_API_KEY,required"`
	LLMBaseURL     string        `env:"LLM_BASE_URL" envDefault:"https://api.openai.com/v1"`
	LLMModel       string        `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	LLMVisionModel string        `env:"LLM_VISION_MODEL" envDefault:"gpt-4o"`
	LLMTimeout     time.Duration `env:"LLM_TIMEOUT" envDefault:"90s"`

	GoogleAPIKey   string `env:"GOOGLE_API_KEY"`
	SearchEngineID string `env:"SEARCH_ENGINE_ID"`
	ArticEnabled   bool   `env:"ARTIC_ENABLED" envDefault:"true"`
	ArticBaseURL   string `env:"ARTIC_BASE_URL" envDefault:"https://api.artic.edu/api/v1"`
	// Filtro opcional de fechas para el catalogo del museo (0 = sin filtro).
	ArticDateStart int `env:"ARTIC_DATE_START" envDefault:"0"`
	ArticDateEnd   int `env:"ARTIC_DATE_END" envDefault:"0"`

	SearchLimit         int           `env:"SEARCH_LIMIT" envDefault:"10"`
	SearchCacheTTL      time.Duration `env:"SEARCH_CACHE_TTL" envDefault:"6h"`
	SourceRatePerMinute int           `env:"SOURCE_RATE_PER_MINUTE" envDefault:"30"`

	CuratorMode          string `env:"CURATOR_MODE" envDefault:"vision"`
	CuratorMaxCandidates int    `env:"CURATOR_MAX_CANDIDATES" envDefault:"30"`
	VisionMaxImages      int    `env:"VISION_MAX_IMAGES" envDefault:"10"`
	MaxSelections        int    `env:"MAX_SELECTIONS" envDefault:"10"`
	TitleLanguage        string `env:"TITLE_LANGUAGE" envDefault:"português"`

	TopTags            int           `env:"TOP_TAGS" envDefault:"3"`
	ThemedQueryEnabled bool          `env:"THEMED_QUERY_ENABLED" envDefault:"false"`
	StageTimeout       time.Duration `env:"STAGE_TIMEOUT" envDefault:"2m"`
	RunTimeout         time.Duration `env:"RUN_TIMEOUT" envDefault:"10m"`

	SchedulerEnabled bool   `env:"SCHEDULER_ENABLED" envDefault:"true"`
	CurationSchedule string `env:"CURATION_SCHEDULE" envDefault:"04:00"`
	CurationTimezone string `env:"CURATION_TIMEZONE" envDefault:"Local"`

	AdminJWTSecret string        `env:"ADMIN_JWT_SECRET"`
	TriggerLimit   int           `env:"TRIGGER_LIMIT" envDefault:"3"`
	TriggerWindow  time.Duration `env:"TRIGGER_WINDOW" envDefault:"1h"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPass     string `env:"SMTP_PASS"`
	SMTPFrom     string `env:"SMTP_FROM"`
	SMTPFromName string `env:"SMTP_FROM_NAME" envDefault:"ArtAdvisor"`
	SMTPUseTLS   bool   `env:"SMTP_USE_TLS" envDefault:"false"`
	AlertEmailTo string `env:"ALERT_EMAIL_TO"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate revisa combinaciones que env no puede expresar con tags.
func (c *Config) Validate() error {
	switch c.CuratorMode {
	case CuratorModeVision, CuratorModeMetadata:
	default:
		return fmt.Errorf("CURATOR_MODE must be %q or %q, got %q", CuratorModeVision, CuratorModeMetadata, c.CuratorMode)
	}
	if (c.GoogleAPIKey == "") != (c.SearchEngineID == "") {
		return fmt.Errorf("GOOGLE_API_KEY and SEARCH_ENGINE_ID must be set together")
	}
	if c.GoogleAPIKey == "" && !c.ArticEnabled {
		return fmt.Errorf("no candidate source configured")
	}
	if _, _, err := c.ScheduleClock(); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// ScheduleClock interpreta CURATION_SCHEDULE como HH:MM.
func (c *Config) ScheduleClock() (int, int, error) {
	t, err := time.Parse("15:04", c.CurationSchedule)
	if err != nil {
		return 0, 0, fmt.Errorf("CURATION_SCHEDULE must be HH:MM: %w", err)
	}
	return t.Hour(), t.Minute(), nil
}

// Location resuelve la zona horaria que define el "hoy" de la curaduria.
func (c *Config) Location() (*time.Location, error) {
	if c.CurationTimezone == "" || c.CurationTimezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.CurationTimezone)
	if err != nil {
		return nil, fmt.Errorf("CURATION_TIMEZONE: %w", err)
	}
	return loc, nil
}
