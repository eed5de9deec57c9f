package ioutils

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"pass 3: read title", "pass 3_ read title"},
		{"a/b\\c", "a_b_c"},
		{"Track...", "Track"},
		{"  many   spaces  ", "many spaces"},
		{"", ""},
	}

	for _, tt := range tests {
		got := SanitizeFileName(tt.input)
		if got != tt.want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestWriteFile_CreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "out.txt")

	if err := WriteFile(context.Background(), path, []byte("first")); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	if err := WriteFile(context.Background(), path, []byte("second")); err != nil {
		t.Fatalf("WriteFile() overwrite error: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if string(got) != "second" {
		t.Errorf("content = %q, want %q", got, "second")
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir() error: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want only the target file", len(entries))
	}
}

func TestWriteFile_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	path := filepath.Join(t.TempDir(), "out.txt")
	if err := WriteFile(ctx, path, []byte("x")); err == nil {
		t.Error("WriteFile() with cancelled context succeeded")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("file exists after cancelled write")
	}
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error: %v", err)
	}
	return buf.Bytes()
}

func decodeSize(t *testing.T, data []byte) (int, int) {
	t.Helper()
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("jpeg.Decode() error: %v", err)
	}
	return img.Bounds().Dx(), img.Bounds().Dy()
}

func TestResizeImage(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		max          int
		wantW, wantH int
	}{
		{"wide", 400, 200, 100, 100, 50},
		{"tall", 200, 400, 100, 50, 100},
		{"within bounds", 80, 60, 100, 80, 60},
		{"no bound", 300, 100, 0, 300, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ResizeImage(context.Background(), testPNG(t, tt.w, tt.h), tt.max, tt.max)
			if err != nil {
				t.Fatalf("ResizeImage() error: %v", err)
			}
			w, h := decodeSize(t, out)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("ResizeImage() size = %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestResizeImage_InvalidData(t *testing.T) {
	if _, err := ResizeImage(context.Background(), []byte("not an image"), 10, 10); err == nil {
		t.Error("ResizeImage() with garbage succeeded")
	}
}

func TestScreenshots_Save(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	shots := NewScreenshots(dir, 100)
	shots.now = func() time.Time { return time.Date(2024, 3, 1, 12, 30, 5, 0, time.UTC) }

	path, err := shots.Save(context.Background(), testPNG(t, 400, 200), "pass 3: failed")
	if err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	want := filepath.Join(dir, "20240301-123005 pass 3_ failed.jpg")
	if path != want {
		t.Errorf("Save() path = %q, want %q", path, want)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if w, h := decodeSize(t, data); w != 100 || h != 50 {
		t.Errorf("saved size = %dx%d, want 100x50", w, h)
	}
}
