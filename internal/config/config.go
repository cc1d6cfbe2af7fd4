// Package config provides functionality for managing configuration options
// for the application using command-line flags, a .env file and environment
// variables. Environment variables win over flags.
package config

import (
	"flag"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Options holds the configuration values for the application.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string

	// BaseURL is the public base URL short links are served from.
	BaseURL string

	// DatabaseDSN holds the Postgres connection string. Empty selects the
	// in-memory repository.
	DatabaseDSN string

	// JWTSecret signs the identity cookies.
	JWTSecret string

	// LogLevel is the zap log level (debug, info, warn, error).
	LogLevel string

	// EnablePprof indicates whether to enable pprof for profiling.
	EnablePprof bool

	// EnableHTTPS indicates whether to serve TLS via autocert.
	EnableHTTPS bool

	// TLSHosts is the comma-separated host whitelist for autocert.
	TLSHosts string
}

// options holds the current configuration values.
var options = &Options{}

// init initializes command-line flags and sets default values.
func init() {
	flag.StringVar(&options.Port, "a", "localhost:8080", "run on ip:port server")
	flag.StringVar(&options.BaseURL, "b", "http://localhost:8080", "public base url")
	flag.StringVar(&options.DatabaseDSN, "d", "", "db address")
	flag.StringVar(&options.JWTSecret, "j", "supersecretkey", "jwt signing secret")
	flag.StringVar(&options.LogLevel, "l", "info", "log level")
	flag.BoolVar(&options.EnablePprof, "p", false, "enable pprof")
	flag.BoolVar(&options.EnableHTTPS, "s", false, "enable https")
	flag.StringVar(&options.TLSHosts, "t", "", "comma-separated autocert hosts")
}

// Parse parses the command-line flags, loads .env if present and applies
// environment variable overrides. It returns the resulting Options.
func Parse() *Options {
	flag.Parse()

	// Missing .env is fine; explicit environment still applies.
	_ = godotenv.Load()

	if serverAddress := os.Getenv("SERVER_ADDRESS"); serverAddress != "" {
		options.Port = serverAddress
	}

	if baseURL := os.Getenv("BASE_URL"); baseURL != "" {
		options.BaseURL = baseURL
	}

	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		options.DatabaseDSN = dsn
	}

	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		options.JWTSecret = secret
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		options.LogLevel = level
	}

	if enableHTTPS := os.Getenv("ENABLE_HTTPS"); enableHTTPS != "" {
		httpsMode, err := strconv.ParseBool(enableHTTPS)
		if err != nil {
			httpsMode = false
		}
		options.EnableHTTPS = httpsMode
	}

	if hosts := os.Getenv("TLS_HOSTS"); hosts != "" {
		options.TLSHosts = hosts
	}

	return options
}
