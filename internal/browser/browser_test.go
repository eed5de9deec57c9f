package browser_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/tebeka/selenium"

	"github.com/VArrow2001/shuffle-audit/internal/browser"
	"github.com/VArrow2001/shuffle-audit/internal/browser/browsertest"
)

func TestWaitFor_AppearsAfterPolling(t *testing.T) {
	s := browsertest.NewSession()
	row := browsertest.NewElement("row", nil)
	s.Script("//row", nil, nil, browsertest.Elements(row))

	found, err := browser.WaitFor(context.Background(), s, selenium.ByXPATH, "//row",
		browser.WaitOptions{MaxWait: time.Second, Poll: time.Millisecond})
	if err != nil {
		t.Fatalf("WaitFor() error: %v", err)
	}
	if len(found) != 1 {
		t.Errorf("WaitFor() returned %d elements, want 1", len(found))
	}
}

func TestWaitFor_Timeout(t *testing.T) {
	s := browsertest.NewSession()

	_, err := browser.WaitFor(context.Background(), s, selenium.ByXPATH, "//missing",
		browser.WaitOptions{MaxWait: 5 * time.Millisecond, Poll: time.Millisecond})
	if !errors.Is(err, browser.ErrTimeout) {
		t.Errorf("WaitFor() error = %v, want ErrTimeout", err)
	}
}

func TestWaitFor_Cancelled(t *testing.T) {
	s := browsertest.NewSession()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := browser.WaitFor(ctx, s, selenium.ByXPATH, "//row",
		browser.WaitOptions{Delay: time.Second, MaxWait: time.Second})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("WaitFor() error = %v, want context.Canceled", err)
	}
}

func TestWaitFor_DriverError(t *testing.T) {
	s := browsertest.NewSession()
	s.FindHook = func(by, value string) ([]browser.Element, error) {
		return nil, errors.New("invalid selector")
	}

	_, err := browser.WaitFor(context.Background(), s, selenium.ByXPATH, "//[",
		browser.WaitOptions{MaxWait: time.Second})
	if err == nil || errors.Is(err, browser.ErrTimeout) {
		t.Errorf("WaitFor() error = %v, want the driver error", err)
	}
}

func TestWaitForOne_Index(t *testing.T) {
	s := browsertest.NewSession()
	a := browsertest.NewElement("a", nil)
	b := browsertest.NewElement("b", nil)
	s.Script("//x", browsertest.Elements(a, b))

	got, err := browser.WaitForOne(context.Background(), s, selenium.ByXPATH, "//x", 1,
		browser.WaitOptions{MaxWait: time.Second})
	if err != nil {
		t.Fatalf("WaitForOne() error: %v", err)
	}
	if text, _ := got.Text(); text != "b" {
		t.Errorf("WaitForOne() text = %q, want b", text)
	}

	_, err = browser.WaitForOne(context.Background(), s, selenium.ByXPATH, "//x", 5,
		browser.WaitOptions{MaxWait: time.Second})
	if !browser.IsNoSuchElement(err) {
		t.Errorf("WaitForOne() out of range error = %v", err)
	}
}

func TestLiveOnly(t *testing.T) {
	live := browsertest.NewElement("live", nil)
	stale := &browsertest.Element{TextValue: "stale", Stale: true}

	got := browser.LiveOnly(browsertest.Elements(stale, live, stale))
	if len(got) != 1 {
		t.Fatalf("LiveOnly() kept %d elements, want 1", len(got))
	}
	if text, _ := got[0].Text(); text != "live" {
		t.Errorf("LiveOnly() kept %q", text)
	}
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantStale bool
		wantNone  bool
	}{
		{"nil", nil, false, false},
		{"sentinel stale", browser.ErrStale, true, false},
		{"driver stale", errors.New("stale element reference: element is not attached to the page document"), true, false},
		{"wrapped stale", fmt.Errorf("read title: %w", browser.ErrStale), true, false},
		{"driver missing", errors.New("no such element: Unable to locate element"), false, true},
		{"other", errors.New("timeout"), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := browser.IsStale(tt.err); got != tt.wantStale {
				t.Errorf("IsStale() = %v, want %v", got, tt.wantStale)
			}
			if got := browser.IsNoSuchElement(tt.err); got != tt.wantNone {
				t.Errorf("IsNoSuchElement() = %v, want %v", got, tt.wantNone)
			}
		})
	}
}

func TestAuthorise(t *testing.T) {
	s := browsertest.NewSession()
	cookies := []selenium.Cookie{
		{Name: "Session_id", Value: "abc", Domain: ".yandex.ru", Path: "/"},
		{Name: "yandexuid", Value: "42", Domain: ".yandex.ru", Path: "/"},
	}

	if err := browser.Authorise(s, "https://music.yandex.ru", cookies); err != nil {
		t.Fatalf("Authorise() error: %v", err)
	}
	if diff := cmp.Diff([]string{"https://music.yandex.ru"}, s.Visited()); diff != "" {
		t.Errorf("visited mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(cookies, s.Cookies()); diff != "" {
		t.Errorf("cookies mismatch (-want +got):\n%s", diff)
	}
}

func TestStatusProbe(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/wd/hub/status" {
			http.NotFound(w, r)
			return
		}
		calls++
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if err := browser.WaitExecutorReady(context.Background(), srv.URL+"/wd/hub/", time.Second); err != nil {
		t.Fatalf("WaitExecutorReady() error: %v", err)
	}
	if calls != 1 {
		t.Errorf("status endpoint called %d times, want 1", calls)
	}
}
