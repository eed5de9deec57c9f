// Package config provides configuration management for shuffle-audit.
//
// This package handles:
//   - Loading and saving settings from JSON files
//   - Default configuration values
//   - Conversion to browser.Config and sampling.Config for other packages
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// Cookies read from ~/.shuffle-audit/cookies/yandex.json
//	// Samples stored in ~/.shuffle-audit/samples.db
//	// A local chromedriver on port 9515
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/config.json")
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// # Configuration Options
//
// Settings includes options for:
//   - Service and playlist URLs, cookie file
//   - Database and screenshot locations
//   - WebDriver connection and browser flags
//   - Page timing (waits, read retries, scroll pacing)
//   - Sampling (pass length, target sample count, pass retry backoff)
package config
