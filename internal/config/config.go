// Package config provides functionality for managing configuration options
// for the application using command-line flags, environment variables and
// an optional JSON config file.
package config

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Options holds the configuration values for the application.
type Options struct {
	// Addr defines the server's listening address (ip:port).
	Addr string `json:"addr"`

	// DatabaseDSN holds the database connection string for the application.
	DatabaseDSN string `json:"database_dsn"`

	// FrontendOrigin is the additional CORS origin allowed besides localhost.
	FrontendOrigin string `json:"frontend_origin"`

	// AttachmentBucket is the S3 bucket holding todo attachments.
	AttachmentBucket string `json:"attachment_bucket"`

	// SessionTTL is how long an issued session token stays valid.
	SessionTTL time.Duration `json:"-"`

	// Config is the path to the config file.
	Config string `json:"-"`
}

// options holds the current configuration values.
var options = &Options{}

// init initializes command-line flags and sets default values.
func init() {
	flag.StringVar(&options.Addr, "a", "localhost:8080", "run on ip:port server")
	flag.StringVar(&options.DatabaseDSN, "d", "", "db address")
	flag.StringVar(&options.FrontendOrigin, "o", "", "allowed frontend origin")
	flag.StringVar(&options.AttachmentBucket, "b", "", "attachment bucket name")
	flag.DurationVar(&options.SessionTTL, "session-ttl", 24*time.Hour, "session token lifetime")
	flag.StringVar(&options.Config, "config", "config.json", "path to config file")
	flag.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
}

// Parse parses the command-line flags, the optional .env file, the optional
// JSON config file and environment variables to set configuration values.
// It returns a pointer to the Options struct containing the parsed values.
// Precedence, lowest to highest: flag defaults, config file, environment.
func Parse() *Options {
	flag.Parse()

	// .env is optional; absence is the normal production case.
	_ = godotenv.Load()

	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			data, err := os.ReadFile(options.Config)
			if err != nil {
				log.Fatalf("error while reading config file: %v", err)
			}
			if err := json.Unmarshal(data, options); err != nil {
				log.Fatalf("error while parsing config file: %v", err)
			}
		}
	}

	if serverAddress := os.Getenv("SERVER_ADDRESS"); serverAddress != "" {
		options.Addr = serverAddress
	}
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		options.DatabaseDSN = dsn
	}
	if origin := os.Getenv("FRONTEND_URL"); origin != "" {
		options.FrontendOrigin = origin
	}
	if bucket := os.Getenv("BUCKET_NAME"); bucket != "" {
		options.AttachmentBucket = bucket
	}

	return options
}
