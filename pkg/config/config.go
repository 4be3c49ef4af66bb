package config

import "time"

// AppConfig holds the global application configuration
type AppConfig struct {
	DownloadDir        string              `yaml:"download_dir"`
	UserAgent          string              `yaml:"user_agent,omitempty"`
	RequestDelay       time.Duration       `yaml:"request_delay,omitempty"` // Politeness delay between targets
	MaxRetries         int                 `yaml:"max_retries,omitempty"`
	RetryDelay         time.Duration       `yaml:"retry_delay,omitempty"` // Flat delay between retry attempts
	RespectRobotsTxt   *bool               `yaml:"respect_robots_txt,omitempty"`
	CreateSummary      bool                `yaml:"create_summary,omitempty"`
	SummaryFilename    string              `yaml:"summary_filename,omitempty"`
	CreateTreeFile     bool                `yaml:"create_tree_file,omitempty"`
	HTTPClientSettings HTTPClientConfig    `yaml:"http_client_settings,omitempty"`
	Categories         map[string][]string `yaml:"categories"` // Category name -> index page URLs
}

// HTTPClientConfig holds settings for the shared HTTP client
type HTTPClientConfig struct {
	Timeout               time.Duration `yaml:"timeout,omitempty"`                 // Overall request timeout
	MaxIdleConns          int           `yaml:"max_idle_conns,omitempty"`          // Max total idle connections
	MaxIdleConnsPerHost   int           `yaml:"max_idle_conns_per_host,omitempty"` // Max idle connections per host
	IdleConnTimeout       time.Duration `yaml:"idle_conn_timeout,omitempty"`       // Timeout for idle connections
	TLSHandshakeTimeout   time.Duration `yaml:"tls_handshake_timeout,omitempty"`   // Timeout for TLS handshake
	ExpectContinueTimeout time.Duration `yaml:"expect_continue_timeout,omitempty"` // Timeout for 100-continue
	DialerTimeout         time.Duration `yaml:"dialer_timeout,omitempty"`          // Connection dial timeout
	DialerKeepAlive       time.Duration `yaml:"dialer_keep_alive,omitempty"`       // TCP keep-alive interval
}

// GetEffectiveRespectRobotsTxt determines whether robots.txt should be consulted.
// Defaults to true when unset
func (c *AppConfig) GetEffectiveRespectRobotsTxt() bool {
	if c.RespectRobotsTxt != nil {
		return *c.RespectRobotsTxt
	}
	return true
}
