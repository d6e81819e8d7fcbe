package config

import "time"

// TestConfig returns a config suitable for testing
func TestConfig() *Config {
	cfg := defaultConfig()
	cfg.Database = DatabaseConfig{
		Path:    ":memory:",
		Timeout: 1 * time.Second,
	}
	cfg.HN.HTTPTimeout = 5 * time.Second
	cfg.HN.UserAgent = "hackers-test/1.0"
	cfg.HN.PageSize = 5
	cfg.Log.Level = "OFF"
	cfg.About.FeedbackEmail = "feedback@example.com"
	return cfg
}
