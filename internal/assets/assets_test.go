package assets

import (
	"context"
	stderrors "errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.White)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestLoaderLocalFile(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "logo.png"), 12, 7)

	l := NewLoader()
	l.BaseDir = dir
	img, err := l.Fetch(context.Background(), "logo.png")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if img.Bounds().Dx() != 12 || img.Bounds().Dy() != 7 {
		t.Errorf("unexpected bounds %v", img.Bounds())
	}
}

func TestLoaderMissingFile(t *testing.T) {
	_, err := NewLoader().Fetch(context.Background(), "/does/not/exist.png")
	var le *LoadError
	if !stderrors.As(err, &le) {
		t.Fatalf("expected *LoadError, got %T: %v", err, err)
	}
	if le.Ref != "/does/not/exist.png" {
		t.Errorf("unexpected ref %q", le.Ref)
	}
	if !stderrors.Is(err, os.ErrNotExist) {
		t.Errorf("expected wrapped ErrNotExist, got %v", err)
	}
}

func TestLoaderHTTP(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "sponsor.png"), 30, 10)

	srv := httptest.NewServer(http.FileServer(http.Dir(dir)))
	defer srv.Close()

	l := NewLoader()
	img, err := l.Fetch(context.Background(), srv.URL+"/sponsor.png")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if img.Bounds().Dx() != 30 {
		t.Errorf("unexpected width %d", img.Bounds().Dx())
	}

	if _, err := l.Fetch(context.Background(), srv.URL+"/missing.png"); err == nil {
		t.Error("expected error for 404")
	}
}

func TestSplitPage(t *testing.T) {
	tests := []struct {
		ref      string
		wantPath string
		wantPage int
	}{
		{"deck.pdf#3", "deck.pdf", 2},
		{"deck.pdf", "deck.pdf", 0},
		{"deck.pdf#x", "deck.pdf", 0},
		{"image.png#3", "image.png#3", 0},
	}
	for _, tt := range tests {
		path, page := splitPage(tt.ref)
		if path != tt.wantPath || page != tt.wantPage {
			t.Errorf("splitPage(%q) = %q, %d; want %q, %d", tt.ref, path, page, tt.wantPath, tt.wantPage)
		}
	}
}

func TestFetchAll(t *testing.T) {
	a := image.NewRGBA(image.Rect(0, 0, 1, 1))
	b := image.NewRGBA(image.Rect(0, 0, 2, 2))
	src := Static{"a": a, "b": b}

	images, err := FetchAll(context.Background(), src, "b", "a")
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if images[0] != b || images[1] != a {
		t.Error("images returned out of order")
	}

	_, err = FetchAll(context.Background(), src, "a", "missing")
	var le *LoadError
	if !stderrors.As(err, &le) || le.Ref != "missing" {
		t.Errorf("expected LoadError for missing, got %v", err)
	}
}
