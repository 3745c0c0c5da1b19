package internal

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PageScraper reads video metadata from the public watch page and
// downloads thumbnails
type PageScraper struct {
	client       *http.Client
	watchBaseURL string
	thumbBaseURL string
	thumbnailDir string
}

// NewPageScraper creates a scraper that stores thumbnails in thumbnailDir
func NewPageScraper(client *http.Client, thumbnailDir string) *PageScraper {
	if client == nil {
		client = http.DefaultClient
	}
	return &PageScraper{
		client:       client,
		watchBaseURL: ytWatchBaseURL,
		thumbBaseURL: "https://img.youtube.com",
		thumbnailDir: thumbnailDir,
	}
}

// Metadata fetches the watch page and reads the <title> element and the
// channel name from <link itemprop="name" content="...">
func (s *PageScraper) Metadata(ctx context.Context, ref VideoReference) (*VideoMetadata, error) {
	resp, err := s.fetch(ctx, s.watchBaseURL+"/watch?v="+ref.ID)
	if err != nil {
		return nil, fmt.Errorf("fetching watch page: %w", err)
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing watch page: %w", err)
	}

	titleSel := doc.Find("title").First()
	if titleSel.Length() == 0 {
		return nil, fmt.Errorf("%w: title element not found", ErrLookupFailure)
	}

	channel, ok := doc.Find(`link[itemprop="name"]`).First().Attr("content")
	if !ok {
		return nil, fmt.Errorf("%w: channel name not found", ErrLookupFailure)
	}

	return &VideoMetadata{
		Title:   strings.TrimSpace(titleSel.Text()),
		Channel: channel,
	}, nil
}

// Thumbnail downloads the hqdefault thumbnail and returns the local path
func (s *PageScraper) Thumbnail(ctx context.Context, ref VideoReference) (string, error) {
	if err := EnsureDirs(s.thumbnailDir); err != nil {
		return "", fmt.Errorf("creating thumbnail directory: %w", err)
	}

	resp, err := s.fetch(ctx, fmt.Sprintf("%s/vi/%s/hqdefault.jpg", s.thumbBaseURL, ref.ID))
	if err != nil {
		return "", fmt.Errorf("downloading thumbnail: %w", err)
	}
	defer resp.Body.Close()

	path := ThumbnailPath(s.thumbnailDir, ref)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating thumbnail file: %w", err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		return "", fmt.Errorf("writing thumbnail: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("writing thumbnail: %w", err)
	}

	return path, nil
}

// ThumbnailPath is where the thumbnail for ref is stored
func ThumbnailPath(thumbnailDir string, ref VideoReference) string {
	return filepath.Join(thumbnailDir, ref.ID+".jpg")
}

func (s *PageScraper) fetch(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", ytUserAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return resp, nil
}
