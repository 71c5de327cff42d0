package config

import "github.com/RacoonMediaServer/rms-packages/pkg/configuration"

// Remote is settings for connection to the media processing service
type Remote struct {
	Scheme string
	Host   string
	Port   int
	Path   string
}

// Tunables are behavioral parameters forwarded to the processing service
// with every submission
type Tunables struct {
	// BatchSize is an amount of subtitle lines per request
	BatchSize int `json:"batch-size"`

	// ConcurrentRequests is a parallelism level of the remote job
	ConcurrentRequests int `json:"concurrent-requests"`

	// MaxRetries is the server-side retry limit per failed request
	MaxRetries int `json:"max-retries"`

	// SaveInterval is how often the service persists intermediate results
	SaveInterval int `json:"save-interval"`
}

// Configuration represents entire service configuration
type Configuration struct {
	// MongoDB connection string
	Database string

	// Device API key
	Device string

	// Processor is settings to connect to the media processing service
	Processor Remote

	// Annotation job tunables
	Annotation Tunables
}

var config Configuration

// Load open and parses configuration file
func Load(configFilePath string) error {
	return configuration.Load(configFilePath, &config)
}

// Config returns loaded configuration
func Config() Configuration {
	return config
}
