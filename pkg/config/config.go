package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Port        string
	Environment string
	LogLevel    string

	// Media
	MediaRoot    string
	PublicPrefix string
	StaticDir    string
	ViewsDir     string
	BucketName   string
	BucketPrefix string

	// Contact relay
	SMTPHost         string
	SMTPPort         int
	EmailUser        string
	EmailPass        string
	ContactRecipient string
	ContactLimit     int
	ContactWindow    time.Duration

	CORSOrigins []string
	DefaultLang string
}

// ErrInvalidPort is returned when PORT or SMTP_PORT is not a number
var ErrInvalidPort = errors.New("invalid port")

// ErrInvalidLang is returned when DEFAULT_LANG is not a supported language
var ErrInvalidLang = errors.New("DEFAULT_LANG must be one of: en, tr")

// ErrInvalidContactLimit is returned when CONTACT_LIMIT or CONTACT_WINDOW cannot be parsed
var ErrInvalidContactLimit = errors.New("invalid contact throttle settings")

// Load loads configuration from environment variables. A .env file in the
// working directory is read first if present; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port := getEnv("PORT", "8080")
	if _, err := strconv.Atoi(port); err != nil {
		return nil, fmt.Errorf("%w: PORT=%q", ErrInvalidPort, port)
	}

	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("%w: SMTP_PORT: %v", ErrInvalidPort, err)
	}

	limit, err := strconv.Atoi(getEnv("CONTACT_LIMIT", "5"))
	if err != nil || limit < 0 {
		return nil, fmt.Errorf("%w: CONTACT_LIMIT=%q", ErrInvalidContactLimit, os.Getenv("CONTACT_LIMIT"))
	}

	window, err := time.ParseDuration(getEnv("CONTACT_WINDOW", "10m"))
	if err != nil || window <= 0 {
		return nil, fmt.Errorf("%w: CONTACT_WINDOW=%q", ErrInvalidContactLimit, os.Getenv("CONTACT_WINDOW"))
	}

	lang := strings.ToLower(getEnv("DEFAULT_LANG", "en"))
	if lang != "en" && lang != "tr" {
		return nil, ErrInvalidLang
	}

	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:             port,
		Environment:      env,
		LogLevel:         getEnv("LOG_LEVEL", defaultLogLevel(env)),
		MediaRoot:        getEnv("MEDIA_ROOT", "./public/gallery"),
		PublicPrefix:     "/" + strings.Trim(getEnv("PUBLIC_PREFIX", "/gallery"), "/"),
		StaticDir:        getEnv("STATIC_DIR", "./public"),
		ViewsDir:         getEnv("VIEWS_DIR", "./views"),
		BucketName:       os.Getenv("BUCKET_NAME"),
		BucketPrefix:     getEnv("BUCKET_PREFIX", "gallery/"),
		SMTPHost:         getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:         smtpPort,
		EmailUser:        os.Getenv("EMAIL_USER"),
		EmailPass:        os.Getenv("EMAIL_PASS"),
		ContactRecipient: getEnv("CONTACT_RECIPIENT", "dogan.parlak@dpformance.com"),
		ContactLimit:     limit,
		ContactWindow:    window,
		CORSOrigins:      splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		DefaultLang:      lang,
	}, nil
}

// ServerAddress returns the server address with port
func (c *Config) ServerAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

// UsesBucket reports whether media is served from a storage bucket instead of MediaRoot
func (c *Config) UsesBucket() bool {
	return c.BucketName != ""
}

// MailConfigured reports whether SMTP credentials are present
func (c *Config) MailConfigured() bool {
	return c.EmailUser != "" && c.EmailPass != ""
}

// PrintServerStartMessage prints a message when the server starts
func (c *Config) PrintServerStartMessage() {
	fmt.Printf("Starting server at port %s\n", c.Port)
	fmt.Printf("Site URL: http://localhost:%s/\n", c.Port)
	fmt.Printf("Gallery API: http://localhost:%s/api/gallery/{folder}\n", c.Port)
	if c.UsesBucket() {
		fmt.Printf("Media source: gs://%s/%s\n", c.BucketName, c.BucketPrefix)
	} else {
		fmt.Printf("Media source: %s\n", c.MediaRoot)
	}
}

func defaultLogLevel(env string) string {
	if env == "prod" {
		return "info"
	}
	return "debug"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
