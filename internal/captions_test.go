package internal

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const timedTextXML = `<?xml version="1.0" encoding="utf-8" ?><transcript>` +
	`<text start="0.0" dur="1.5">Hello </text>` +
	`<text start="1.5" dur="1.0">   </text>` +
	`<text start="2.5" dur="2.0">world &amp;amp; gophers.</text>` +
	`</transcript>`

func newCaptionServer(t *testing.T, playerJSON func(baseURL string) string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "abc123XYZ", r.URL.Query().Get("v"))
		fmt.Fprintf(w, `<html><script>var ytInitialPlayerResponse = %s;var meta = {};</script></html>`, playerJSON(srv.URL))
	})
	mux.HandleFunc("/api/timedtext", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, timedTextXML)
	})
	return srv
}

func TestInnertubeCaptions(t *testing.T) {
	srv := newCaptionServer(t, func(base string) string {
		return fmt.Sprintf(`{"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[`+
			`{"baseUrl":"%[1]s/api/timedtext?lang=de","languageCode":"de"},`+
			`{"baseUrl":"%[1]s/api/timedtext?lang=en","languageCode":"en","kind":"asr"}]}},`+
			`"videoDetails":{"title":"a \"quoted\" {title}"}}`, base)
	})

	c := NewInnertubeCaptions(srv.Client(), false)
	c.baseURL = srv.URL

	result := c.Captions(context.Background(), VideoReference{ID: "abc123XYZ"}, CaptionLanguages)
	require.True(t, result.Ok(), "%v", result.Err)
	assert.Equal(t, []string{"Hello ", "world & gophers."}, result.Fragments)
}

func TestInnertubeCaptionsNoMatchingLanguage(t *testing.T) {
	srv := newCaptionServer(t, func(base string) string {
		return fmt.Sprintf(`{"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[`+
			`{"baseUrl":"%s/api/timedtext?lang=de","languageCode":"de"}]}}}`, base)
	})

	c := NewInnertubeCaptions(srv.Client(), false)
	c.baseURL = srv.URL

	result := c.Captions(context.Background(), VideoReference{ID: "abc123XYZ"}, CaptionLanguages)
	assert.False(t, result.Ok())
	assert.ErrorIs(t, result.Err, ErrCaptionsUnavailable)
}

func TestInnertubeCaptionsDisabled(t *testing.T) {
	srv := newCaptionServer(t, func(string) string {
		return `{"playabilityStatus":{"status":"OK"}}`
	})

	c := NewInnertubeCaptions(srv.Client(), false)
	c.baseURL = srv.URL

	result := c.Captions(context.Background(), VideoReference{ID: "abc123XYZ"}, CaptionLanguages)
	assert.ErrorIs(t, result.Err, ErrCaptionsUnavailable)
	assert.Contains(t, result.Err.Error(), "no captions")
}

func TestInnertubeCaptionsWatchPageError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewInnertubeCaptions(srv.Client(), false)
	c.baseURL = srv.URL

	result := c.Captions(context.Background(), VideoReference{ID: "abc123XYZ"}, CaptionLanguages)
	assert.ErrorIs(t, result.Err, ErrCaptionsUnavailable)
	assert.Empty(t, result.Fragments)
}

func TestPickBestTrack(t *testing.T) {
	tracks := []captionTrack{
		{BaseURL: "u-es-asr", LanguageCode: "es", Kind: "asr"},
		{BaseURL: "u-en-asr", LanguageCode: "en", Kind: "asr"},
		{BaseURL: "u-ko", LanguageCode: "ko"},
		{BaseURL: "u-en-po&exp=xpe", LanguageCode: "en"},
		{BaseURL: "", LanguageCode: "es"},
	}

	track, ok := pickBestTrack(tracks, CaptionLanguages)
	require.True(t, ok)
	assert.Equal(t, "u-ko", track.BaseURL, "manual tracks win over auto-generated ones")

	track, ok = pickBestTrack(tracks[:2], CaptionLanguages)
	require.True(t, ok)
	assert.Equal(t, "u-en-asr", track.BaseURL, "auto-generated tracks follow language preference")

	_, ok = pickBestTrack([]captionTrack{{BaseURL: "u-fr", LanguageCode: "fr"}}, CaptionLanguages)
	assert.False(t, ok)
}

func TestParseTimedText(t *testing.T) {
	fragments, err := parseTimedText([]byte(timedTextXML))
	require.NoError(t, err)
	assert.Equal(t, []string{"Hello ", "world & gophers."}, fragments)

	_, err = parseTimedText([]byte("<transcript><text>"))
	assert.Error(t, err)
}

func TestExtractJSON(t *testing.T) {
	assert.Equal(t, `{"a":{"b":"}"}}`, string(extractJSON([]byte(`{"a":{"b":"}"}};rest`))))
	assert.Equal(t, `{"s":"\"{"}`, string(extractJSON([]byte(`{"s":"\"{"} tail`))))
	assert.Nil(t, extractJSON([]byte(`{"open":`)))
	assert.Nil(t, extractJSON([]byte(`null`)))
}

func TestCaptionsResultOk(t *testing.T) {
	assert.True(t, CaptionsResult{Fragments: []string{"x"}}.Ok())
	assert.False(t, CaptionsResult{}.Ok())
	assert.False(t, captionsFailed("boom").Ok())
}
