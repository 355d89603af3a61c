package storage

// Config points at the S3-compatible store holding snapshots and feed pages.
type Config struct {
	// Endpoint is host[:port]; a scheme prefix is tolerated.
	Endpoint  string `mapstructure:"endpoint" default:"localhost:9000"`
	AccessKey string `mapstructure:"access_key" default:"minioadmin"`
	SecretKey string `mapstructure:"secret_key" default:"minioadmin"`
	UseSSL    bool   `mapstructure:"use_ssl" default:"false"`
	// Bucket holds set-index snapshots and pushed feed pages.
	Bucket string `mapstructure:"bucket" default:"stash-pricer"`
	// Region is passed to MakeBucket when the bucket is created.
	Region string `mapstructure:"region" default:""`
	// TimeoutSeconds bounds dialing, TLS and the wait for response headers.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
