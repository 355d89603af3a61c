package server

import "time"

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API. Empty disables auth.
	ApiKey string `mapstructure:"api_key" default:""`
	// ReadTimeout bounds reading one request, including its body.
	ReadTimeout time.Duration `mapstructure:"read_timeout" default:"30s"`
	// BodyLimit is the largest accepted request body in bytes. Pushed feed
	// pages can be large.
	BodyLimit int `mapstructure:"body_limit" default:"33554432"`
}
