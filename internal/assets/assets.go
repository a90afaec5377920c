// Package assets loads the images an animation needs before its first frame:
// local files, http(s) URLs and PDF pages.
package assets

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/pkg/errors"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
)

// Fetcher resolves an image reference to a decoded image.
type Fetcher interface {
	Fetch(ctx context.Context, ref string) (image.Image, error)
}

// LoadError reports which reference failed to load.
type LoadError struct {
	Ref string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load asset %q: %v", e.Ref, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Loader fetches images from disk or over unauthenticated HTTP GET. PDF
// documents are rasterised with MuPDF; "deck.pdf#3" selects the third page.
// There are no retries.
type Loader struct {
	Client  *http.Client
	BaseDir string
	DPI     float64
}

func NewLoader() *Loader {
	return &Loader{Client: http.DefaultClient, DPI: 150}
}

func (l *Loader) Fetch(ctx context.Context, ref string) (image.Image, error) {
	img, err := l.fetch(ctx, ref)
	if err != nil {
		return nil, &LoadError{Ref: ref, Err: err}
	}
	return img, nil
}

func (l *Loader) fetch(ctx context.Context, ref string) (image.Image, error) {
	path, page := splitPage(ref)

	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		data, contentType, err := l.download(ctx, path)
		if err != nil {
			return nil, err
		}
		if isPDF(path) || strings.HasPrefix(contentType, "application/pdf") {
			doc, err := fitz.NewFromMemory(data)
			if err != nil {
				return nil, errors.Wrap(err, "open pdf")
			}
			defer doc.Close()
			return l.renderPage(doc, page)
		}
		return decode(bytes.NewReader(data))
	}

	if l.BaseDir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(l.BaseDir, path)
	}

	if isPDF(path) {
		doc, err := fitz.New(path)
		if err != nil {
			return nil, errors.Wrap(err, "open pdf")
		}
		defer doc.Close()
		return l.renderPage(doc, page)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return decode(f)
}

func (l *Loader) download(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", errors.Errorf("unexpected status %s", resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", errors.Wrap(err, "read body")
	}
	return data, resp.Header.Get("Content-Type"), nil
}

func (l *Loader) renderPage(doc *fitz.Document, page int) (image.Image, error) {
	if page < 0 || page >= doc.NumPage() {
		return nil, errors.Errorf("page %d out of range (document has %d)", page+1, doc.NumPage())
	}
	dpi := l.DPI
	if dpi <= 0 {
		dpi = 150
	}
	img, err := doc.ImageDPI(page, dpi)
	if err != nil {
		return nil, errors.Wrapf(err, "render page %d", page+1)
	}
	return img, nil
}

func decode(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, errors.Wrap(err, "decode image")
	}
	return img, nil
}

func isPDF(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".pdf")
}

// splitPage separates a "#N" page suffix (1-based) from a PDF reference.
func splitPage(ref string) (string, int) {
	i := strings.LastIndex(ref, "#")
	if i < 0 || !isPDF(ref[:i]) {
		return ref, 0
	}
	n, err := strconv.Atoi(ref[i+1:])
	if err != nil || n < 1 {
		return ref[:i], 0
	}
	return ref[:i], n - 1
}

// FetchAll loads refs concurrently. The first failure cancels the remaining
// fetches and is returned; images are returned in the order of refs.
func FetchAll(ctx context.Context, f Fetcher, refs ...string) ([]image.Image, error) {
	images := make([]image.Image, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	for i, ref := range refs {
		g.Go(func() error {
			img, err := f.Fetch(gctx, ref)
			if err != nil {
				return err
			}
			images[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return images, nil
}

// Static serves images from memory. Missing references fail with a
// *LoadError wrapping os.ErrNotExist.
type Static map[string]image.Image

func (s Static) Fetch(_ context.Context, ref string) (image.Image, error) {
	img, ok := s[ref]
	if !ok {
		return nil, &LoadError{Ref: ref, Err: os.ErrNotExist}
	}
	return img, nil
}
