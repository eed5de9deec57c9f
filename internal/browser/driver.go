package browser

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
)

// Config describes how to reach a WebDriver and which browser to start.
type Config struct {
	// ExecutorURL is a running WebDriver endpoint, e.g. "http://127.0.0.1:4444/wd/hub".
	// When empty, a local chromedriver is started from ChromeDriverPath.
	ExecutorURL string

	ChromeDriverPath string
	ChromeDriverPort int

	// ChromeBinary overrides the Chrome executable.
	ChromeBinary string
	Headless     bool
	Args         []string
}

// Driver owns a browser session and, when it started one, the local
// chromedriver process.
//
// Example usage:
//
//	drv, err := browser.Start(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer drv.Close()
//
//	if err := drv.Get("https://music.yandex.ru"); err != nil {
//	    return err
//	}
type Driver struct {
	Session

	service *selenium.Service
}

// Start launches (or connects to) a WebDriver and opens a Chrome session.
//
// With an ExecutorURL, Start first waits for the executor's /status endpoint
// to answer, so a driver container that is still booting does not fail the
// session request.
func Start(ctx context.Context, cfg *Config) (*Driver, error) {
	executor := cfg.ExecutorURL
	var service *selenium.Service

	if executor == "" {
		var err error
		service, err = selenium.NewChromeDriverService(cfg.ChromeDriverPath, cfg.ChromeDriverPort)
		if err != nil {
			return nil, fmt.Errorf("start chromedriver: %w", err)
		}
		executor = fmt.Sprintf("http://localhost:%d/wd/hub", cfg.ChromeDriverPort)
	} else {
		if err := WaitExecutorReady(ctx, executor, 30*time.Second); err != nil {
			return nil, err
		}
	}

	wd, err := selenium.NewRemote(capabilities(cfg), executor)
	if err != nil {
		if service != nil {
			service.Stop()
		}
		return nil, fmt.Errorf("open browser session: %w", err)
	}

	return &Driver{Session: NewSession(wd), service: service}, nil
}

// Close quits the browser and stops chromedriver if Start launched it.
func (d *Driver) Close() error {
	err := d.Quit()
	if d.service != nil {
		if stopErr := d.service.Stop(); err == nil {
			err = stopErr
		}
	}
	return err
}

func capabilities(cfg *Config) selenium.Capabilities {
	caps := selenium.Capabilities{"browserName": "chrome"}

	args := append([]string{}, cfg.Args...)
	if cfg.Headless {
		args = append(args, "--headless=new", "--window-size=1920,1080")
	}
	caps.AddChrome(chrome.Capabilities{
		Path: cfg.ChromeBinary,
		Args: args,
	})
	return caps
}

// WaitExecutorReady blocks until the WebDriver at executor answers its
// /status endpoint, or timeout elapses.
func WaitExecutorReady(ctx context.Context, executor string, timeout time.Duration) error {
	return newStatusProbe().WaitReady(ctx, executor, timeout)
}

// statusProbe polls a WebDriver executor until it reports ready.
type statusProbe struct {
	httpClient *http.Client
	userAgent  string
}

func newStatusProbe() *statusProbe {
	return &statusProbe{
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		userAgent: "shuffle-audit",
	}
}

// WaitReady polls executor+"/status" once a second until it answers 200 OK.
func (p *statusProbe) WaitReady(ctx context.Context, executor string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	statusURL := strings.TrimRight(executor, "/") + "/status"
	var lastErr error
	for {
		if lastErr = p.check(ctx, statusURL); lastErr == nil {
			return nil
		}
		if err := Sleep(ctx, time.Second); err != nil {
			return fmt.Errorf("webdriver at %s not ready: %w", executor, lastErr)
		}
	}
}

func (p *statusProbe) check(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}
	return nil
}
