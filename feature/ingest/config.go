package ingest

import "time"

// Config configures the stash feed poller.
type Config struct {
	// Enabled starts the polling loop with the server.
	Enabled bool `mapstructure:"enabled" default:"true"`
	// Source is "http" (public stash API) or "object" (pages pushed to the bucket).
	Source string `mapstructure:"source" default:"http"`
	// Endpoint is the public stash API URL.
	Endpoint string `mapstructure:"endpoint" default:"https://api.pathofexile.com/public-stash-tabs"`
	// UserAgent is sent with every feed request; the API rejects anonymous clients.
	UserAgent string `mapstructure:"user_agent" default:"stash-pricer/1.0"`
	// RequestTimeout bounds one feed request.
	RequestTimeout time.Duration `mapstructure:"request_timeout" default:"30s"`
	// PollInterval is the idle sleep when the feed has nothing new.
	PollInterval time.Duration `mapstructure:"poll_interval" default:"10s"`
	// Leagues is an optional allow-list; empty accepts every league.
	Leagues []string `mapstructure:"leagues" default:""`
	// ObjectPrefix is where the object source looks for <cursor>.json pages.
	ObjectPrefix string `mapstructure:"object_prefix" default:"feed"`
	// StartCursor is used while no cursor has been stored yet.
	StartCursor string `mapstructure:"start_cursor" default:""`
}
