package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	got, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if diff := cmp.Diff(DefaultSettings(), got); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	data := `{"playlists_url": "https://music.yandex.ru/users/me/playlists", "pass_length": 10, "headless": true}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	want := DefaultSettings()
	want.PlaylistsURL = "https://music.yandex.ru/users/me/playlists"
	want.PassLength = 10
	want.Headless = true
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() of invalid JSON succeeded")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.json")

	want := DefaultSettings()
	want.WebDriverURL = "http://127.0.0.1:4444/wd/hub"
	want.BrowserArgs = []string{"--mute-audio"}
	want.TargetSamples = 500

	if err := want.Save(path); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestToSamplerConfig(t *testing.T) {
	s := DefaultSettings()
	s.PassLength = 25
	cfg := s.ToSamplerConfig()

	tests := []struct {
		name string
		got  time.Duration
		want time.Duration
	}{
		{"WaitTimeout", cfg.WaitTimeout, 15 * time.Second},
		{"PollInterval", cfg.PollInterval, 300 * time.Millisecond},
		{"ReadRetryDelay", cfg.ReadRetryDelay, 300 * time.Millisecond},
		{"ScrollPause", cfg.ScrollPause, 2 * time.Second},
		{"NextTrackPause", cfg.NextTrackPause, 700 * time.Millisecond},
		{"Pauses.CollectionWait", cfg.Pauses.CollectionWait, 25 * time.Second},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}

	if cfg.PassLength != 25 || cfg.SameTrackRetries != 5 || cfg.ReadRetries != 7 {
		t.Errorf("ToSamplerConfig() = %+v, want pass length 25, 5 same-track retries, 7 read retries", cfg)
	}
	if cfg.PlaylistsURL != s.PlaylistsURL || cfg.CookiesPath != s.CookiesPath {
		t.Errorf("ToSamplerConfig() did not carry URLs and paths over")
	}
}

func TestToDriverConfig(t *testing.T) {
	s := DefaultSettings()
	s.Headless = true
	s.BrowserArgs = []string{"--mute-audio"}
	cfg := s.ToDriverConfig()

	if cfg.ChromeDriverPath != "chromedriver" || cfg.ChromeDriverPort != 9515 {
		t.Errorf("chromedriver = %s:%d, want chromedriver:9515", cfg.ChromeDriverPath, cfg.ChromeDriverPort)
	}
	if !cfg.Headless {
		t.Error("Headless = false, want true")
	}
	if diff := cmp.Diff([]string{"--mute-audio"}, cfg.Args); diff != "" {
		t.Errorf("Args mismatch (-want +got):\n%s", diff)
	}
}
