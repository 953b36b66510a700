package config

import (
	"fmt"
	"strings"
)

const envDev = "DEV"

type EnvVars struct {
	Port          string `env:"PORT" envDefault:"8080"`
	AppName       string `env:"APP_NAME" envDefault:"Booking Server"`
	Env           string `env:"ENV" envDefault:"DEV"`
	BaseURL       string `env:"BASE_URL" envDefault:"http://localhost:8080"`
	MongoURI      string `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase string `env:"MONGODB_DATABASE" envDefault:"booking"`
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	if strings.HasPrefix(e.Port, ":") {
		return e.Port
	}
	return fmt.Sprintf(":%s", e.Port)
}

func (e EnvVars) GetAppName() string {
	return e.AppName
}

func (e EnvVars) GetEnv() string {
	return e.Env
}

// GetBaseURL returns the public base URL (e.g. "https://book.example.com").
// OAuth redirect URIs are built from it.
func (e EnvVars) GetBaseURL() string {
	return strings.TrimSuffix(e.BaseURL, "/")
}

func (e EnvVars) GetMongoURI() string {
	return e.MongoURI
}

func (e EnvVars) GetMongoDatabase() string {
	return e.MongoDatabase
}
