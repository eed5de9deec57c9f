package metrics

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestSamplingMetricsExist(t *testing.T) {
	tests := []struct {
		name   string
		metric interface{}
	}{
		{"PassesTotal", PassesTotal},
		{"PassFailuresTotal", PassFailuresTotal},
		{"PassDuration", PassDuration},
		{"TracksRecordedTotal", TracksRecordedTotal},
		{"GuessedTracksTotal", GuessedTracksTotal},
		{"SameTrackRetriesTotal", SameTrackRetriesTotal},
		{"StoredPasses", StoredPasses},
		{"FirstTrackMean", FirstTrackMean},
		{"TrueMean", TrueMean},
		{"TracklistSize", TracklistSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error: %v", err)
	}
	addr := l.Addr().String()
	l.Close()
	return addr
}

func TestServe(t *testing.T) {
	addr := freeAddr(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, addr) }()

	TrueMean.Set(42)
	PassesTotal.Inc()

	var body string
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get("http://" + addr + "/metrics")
		if err != nil {
			time.Sleep(10 * time.Millisecond)
			continue
		}
		data, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		body = string(data)
		break
	}

	for _, want := range []string{"shuffle_audit_true_mean 42", "shuffle_audit_passes_total", "shuffle_audit_pass_duration_seconds_bucket"} {
		if !strings.Contains(body, want) {
			t.Errorf("/metrics output missing %q:\n%s", want, body)
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve() did not stop after cancel")
	}
}
