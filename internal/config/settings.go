package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/VArrow2001/shuffle-audit/internal/browser"
	"github.com/VArrow2001/shuffle-audit/internal/sampling"
	"github.com/VArrow2001/shuffle-audit/internal/yandex"
)

// Settings holds all configuration options.
type Settings struct {
	// Service settings
	BaseURL      string `json:"base_url"`
	PlaylistsURL string `json:"playlists_url"`
	CookiesPath  string `json:"cookies_path"`

	// Storage settings
	DatabasePath  string `json:"database_path"`
	ScreenshotDir string `json:"screenshot_dir"`
	// ScreenshotMaxSize bounds the longest edge of failure screenshots, 0 keeps the original.
	ScreenshotMaxSize int `json:"screenshot_max_size"`

	// Browser settings
	WebDriverURL     string   `json:"webdriver_url"` // empty starts a local chromedriver
	ChromeDriverPath string   `json:"chromedriver_path"`
	ChromeDriverPort int      `json:"chromedriver_port"`
	ChromeBinary     string   `json:"chrome_binary"`
	Headless         bool     `json:"headless"`
	BrowserArgs      []string `json:"browser_args"`

	// Page timing, in seconds
	WaitTimeout    float64 `json:"wait_timeout"`
	PollInterval   float64 `json:"poll_interval"`
	ReadRetries    int     `json:"read_retries"`
	ReadRetryDelay float64 `json:"read_retry_delay"`
	ScrollStep     int     `json:"scroll_step"`
	ScrollPause    float64 `json:"scroll_pause"`
	NextTrackPause float64 `json:"next_track_pause"`

	// Sampling settings
	SameTrackRetries  int     `json:"same_track_retries"`
	PassLength        int     `json:"pass_length"` // 0 plays the whole tracklist
	TargetSamples     int     `json:"target_samples"`
	PassMaxRetries    int     `json:"pass_max_retries"`
	PassRetryCooldown float64 `json:"pass_retry_cooldown"`
	PassRetryExponent float64 `json:"pass_retry_exponent"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".shuffle-audit")
	return &Settings{
		BaseURL:      "https://music.yandex.ru",
		PlaylistsURL: "https://music.yandex.ru/users/avefromrussia/playlists",
		CookiesPath:  filepath.Join(dataDir, "cookies", "yandex.json"),

		DatabasePath:      filepath.Join(dataDir, "samples.db"),
		ScreenshotDir:     filepath.Join(dataDir, "screenshots"),
		ScreenshotMaxSize: 1280,

		ChromeDriverPath: "chromedriver",
		ChromeDriverPort: 9515,
		Headless:         false,

		WaitTimeout:    15,
		PollInterval:   0.3,
		ReadRetries:    7,
		ReadRetryDelay: 0.3,
		ScrollStep:     300,
		ScrollPause:    2,
		NextTrackPause: 0.7,

		SameTrackRetries:  5,
		PassLength:        0,
		TargetSamples:     100000,
		PassMaxRetries:    7,
		PassRetryCooldown: 1,
		PassRetryExponent: 2,
	}
}

// Load reads settings from a JSON file.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, err
	}

	return settings, nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ToDriverConfig converts settings to browser.Config.
func (s *Settings) ToDriverConfig() *browser.Config {
	return &browser.Config{
		ExecutorURL:      s.WebDriverURL,
		ChromeDriverPath: s.ChromeDriverPath,
		ChromeDriverPort: s.ChromeDriverPort,
		ChromeBinary:     s.ChromeBinary,
		Headless:         s.Headless,
		Args:             s.BrowserArgs,
	}
}

// ToSamplerConfig converts settings to sampling.Config.
func (s *Settings) ToSamplerConfig() *sampling.Config {
	return &sampling.Config{
		BaseURL:           s.BaseURL,
		PlaylistsURL:      s.PlaylistsURL,
		CookiesPath:       s.CookiesPath,
		ScreenshotDir:     s.ScreenshotDir,
		ScreenshotMaxSize: s.ScreenshotMaxSize,
		WaitTimeout:       seconds(s.WaitTimeout),
		PollInterval:      seconds(s.PollInterval),
		ReadRetries:       s.ReadRetries,
		ReadRetryDelay:    seconds(s.ReadRetryDelay),
		ScrollStep:        s.ScrollStep,
		ScrollPause:       seconds(s.ScrollPause),
		Pauses:            yandex.DefaultPauses(),
		NextTrackPause:    seconds(s.NextTrackPause),
		SameTrackRetries:  s.SameTrackRetries,
		PassLength:        s.PassLength,
		PassMaxRetries:    s.PassMaxRetries,
		PassRetryCooldown: s.PassRetryCooldown,
		PassRetryExponent: s.PassRetryExponent,
	}
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}
