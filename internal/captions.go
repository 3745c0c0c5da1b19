package internal

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
)

// Caption lookup against the public watch page.
// The page embeds ytInitialPlayerResponse, whose captionTracks point at
// timedtext XML documents; each <text> node becomes one fragment.

const (
	ytWatchBaseURL = "https://www.youtube.com"
	ytUserAgent    = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

	// ytInitialPlayerResponseMarker marks the start of the player response JSON in watch page HTML
	ytInitialPlayerResponseMarker = "ytInitialPlayerResponse = "

	maxWatchPageBytes = 6 << 20
	maxTimedTextBytes = 4 << 20
)

// CaptionsResult is the outcome of a caption lookup: either ordered
// fragments or the reason captions could not be used
type CaptionsResult struct {
	Fragments []string
	Err       error
}

// Ok reports whether the lookup produced usable fragments
func (r CaptionsResult) Ok() bool {
	return r.Err == nil && len(r.Fragments) > 0
}

func captionsFailed(format string, args ...any) CaptionsResult {
	return CaptionsResult{Err: fmt.Errorf("%w: %s", ErrCaptionsUnavailable, fmt.Sprintf(format, args...))}
}

type playerResponse struct {
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"` // "asr" = auto-generated
}

type timedText struct {
	Lines []timedTextLine `xml:"text"`
}

type timedTextLine struct {
	Start string `xml:"start,attr"`
	Text  string `xml:",chardata"`
}

// InnertubeCaptions fetches captions by scraping the watch page
type InnertubeCaptions struct {
	client  *http.Client
	baseURL string
	verbose bool
}

// NewInnertubeCaptions creates a caption provider backed by the watch page
func NewInnertubeCaptions(client *http.Client, verbose bool) *InnertubeCaptions {
	if client == nil {
		client = http.DefaultClient
	}
	return &InnertubeCaptions{
		client:  client,
		baseURL: ytWatchBaseURL,
		verbose: verbose,
	}
}

// Captions returns the caption fragments for the best track matching langs
func (c *InnertubeCaptions) Captions(ctx context.Context, ref VideoReference, langs []string) CaptionsResult {
	body, err := c.get(ctx, c.baseURL+"/watch?v="+ref.ID, maxWatchPageBytes)
	if err != nil {
		return captionsFailed("watch page: %v", err)
	}

	idx := strings.Index(string(body), ytInitialPlayerResponseMarker)
	if idx < 0 {
		return captionsFailed("ytInitialPlayerResponse not found in watch page")
	}
	jsonData := extractJSON(body[idx+len(ytInitialPlayerResponseMarker):])
	if jsonData == nil {
		return captionsFailed("malformed ytInitialPlayerResponse")
	}

	var player playerResponse
	if err := json.Unmarshal(jsonData, &player); err != nil {
		return captionsFailed("decoding player response: %v", err)
	}
	if player.Captions == nil {
		if player.PlayabilityStatus != nil && player.PlayabilityStatus.Reason != "" {
			return captionsFailed("%s", player.PlayabilityStatus.Reason)
		}
		return captionsFailed("no captions in player response")
	}

	tracks := player.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	track, ok := pickBestTrack(tracks, langs)
	if !ok {
		return captionsFailed("no caption track in %s", strings.Join(langs, ", "))
	}

	if c.verbose {
		fmt.Printf("Using %s caption track (kind=%q)\n", track.LanguageCode, track.Kind)
	}

	xmlData, err := c.get(ctx, track.BaseURL, maxTimedTextBytes)
	if err != nil {
		return captionsFailed("timedtext: %v", err)
	}

	fragments, err := parseTimedText(xmlData)
	if err != nil {
		return captionsFailed("%v", err)
	}
	if len(fragments) == 0 {
		return captionsFailed("caption track is empty")
	}

	return CaptionsResult{Fragments: fragments}
}

func (c *InnertubeCaptions) get(ctx context.Context, url string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", ytUserAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	return io.ReadAll(io.LimitReader(resp.Body, limit))
}

// needsPoToken reports whether a caption track URL requires a PoToken (browser-only)
func needsPoToken(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}

// pickBestTrack selects the first usable track in preference order:
// manual tracks in each preferred language, then auto-generated ones
func pickBestTrack(tracks []captionTrack, langs []string) (captionTrack, bool) {
	usable := make([]captionTrack, 0, len(tracks))
	for _, t := range tracks {
		if t.BaseURL != "" && !needsPoToken(t.BaseURL) {
			usable = append(usable, t)
		}
	}

	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang && t.Kind != "asr" {
				return t, true
			}
		}
	}
	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang {
				return t, true
			}
		}
	}

	return captionTrack{}, false
}

// parseTimedText returns the text of every <text> node in document order.
// YouTube double-escapes entities, so the XML-decoded text is unescaped once more.
func parseTimedText(data []byte) ([]string, error) {
	var tt timedText
	if err := xml.Unmarshal(data, &tt); err != nil {
		return nil, fmt.Errorf("parsing timedtext XML: %w", err)
	}

	fragments := make([]string, 0, len(tt.Lines))
	for _, line := range tt.Lines {
		text := html.UnescapeString(line.Text)
		if strings.TrimSpace(text) == "" {
			continue
		}
		fragments = append(fragments, text)
	}
	return fragments, nil
}

// extractJSON returns the balanced JSON object at the start of b
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr := false
	escaped := false
	for i, c := range b {
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b[:i+1]
			}
		}
	}
	return nil
}
