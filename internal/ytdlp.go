package internal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lrstanley/go-ytdlp"
)

// YtDlp downloads audio and subtitles through yt-dlp. Every call is
// addressed by the video identifier; the watch URL is derived from it.
type YtDlp struct {
	audioDir string
	tempDir  string
	verbose  bool
}

// NewYtDlp creates a new yt-dlp backed downloader
func NewYtDlp(audioDir, tempDir string, verbose bool) *YtDlp {
	return &YtDlp{
		audioDir: audioDir,
		tempDir:  tempDir,
		verbose:  verbose,
	}
}

// DownloadAudio fetches the best audio-only stream as mp3 and returns its path
func (y *YtDlp) DownloadAudio(ctx context.Context, ref VideoReference) (string, error) {
	if y.verbose {
		fmt.Println("Downloading audio...")
	}

	if err := EnsureDirs(y.audioDir); err != nil {
		return "", fmt.Errorf("creating audio directory: %w", err)
	}

	// one directory per download; yt-dlp keeps its partial files next to the output
	workDir, err := os.MkdirTemp(y.audioDir, ".download-"+ref.ID+"-")
	if err != nil {
		return "", fmt.Errorf("creating download directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	outputPath := filepath.Join(workDir, "%(id)s.%(ext)s")

	dl := ytdlp.New().
		Format("bestaudio"). // Select best audio format
		ExtractAudio().      // Extract audio from video
		AudioFormat("mp3").  // Convert to MP3 format
		AudioQuality("5").   // 0 is best, 10 is worst
		NoPlaylist().
		Output(outputPath)

	result, err := dl.Run(ctx, ref.WatchURL())
	if err != nil {
		if y.verbose && result != nil {
			fmt.Printf("Stderr: %s\n", result.Stderr)
		}
		return "", fmt.Errorf("yt-dlp failed: %w", err)
	}

	outputFile, err := publishAudio(workDir, y.audioDir, ref)
	if err != nil {
		return "", err
	}

	if y.verbose {
		fmt.Printf("Audio saved to %s\n", outputFile)
	}

	return outputFile, nil
}

// publishAudio moves <id>.mp3 from workDir into audioDir
func publishAudio(workDir, audioDir string, ref VideoReference) (string, error) {
	downloaded := filepath.Join(workDir, ref.ID+".mp3")
	if !FileExists(downloaded) {
		return "", fmt.Errorf("audio file not found after download: %s", downloaded)
	}

	outputFile := filepath.Join(audioDir, ref.ID+".mp3")
	if err := os.Rename(downloaded, outputFile); err != nil {
		return "", fmt.Errorf("moving audio file: %w", err)
	}
	return outputFile, nil
}

// Captions downloads manual or auto-generated subtitles as SRT and returns
// their text blocks as fragments
func (y *YtDlp) Captions(ctx context.Context, ref VideoReference, langs []string) CaptionsResult {
	subsDir, err := os.MkdirTemp(y.tempDirOrDefault(), "subs-"+ref.ID+"-")
	if err != nil {
		return captionsFailed("creating subtitle directory: %v", err)
	}
	defer os.RemoveAll(subsDir)

	dl := ytdlp.New().
		WriteSubs().                        // Enable subtitle writing
		WriteAutoSubs().                    // Enable auto-generated subtitle writing
		SubLangs(strings.Join(langs, ",")). // Preferred caption languages
		ConvertSubs("srt").                 // Convert subtitles to SRT format
		SkipDownload().                     // Skip downloading the video
		NoPlaylist().
		Output(filepath.Join(subsDir, "%(id)s"))

	result, err := dl.Run(ctx, ref.WatchURL())
	if err != nil {
		if y.verbose && result != nil {
			fmt.Printf("Stderr: %s\n", result.Stderr)
		}
		return captionsFailed("yt-dlp: %v", err)
	}

	file, ok := pickSubtitleFile(subsDir, ref.ID, langs)
	if !ok {
		return captionsFailed("no subtitle files written")
	}

	content, err := os.ReadFile(file)
	if err != nil {
		return captionsFailed("reading subtitles: %v", err)
	}

	lines := removeDuplicates(parseSRT(string(content)))
	if len(lines) == 0 {
		return captionsFailed("subtitle file has no text")
	}

	fragments := make([]string, len(lines))
	for i, line := range lines {
		fragments[i] = line + " "
	}
	return CaptionsResult{Fragments: fragments}
}

func (y *YtDlp) tempDirOrDefault() string {
	if y.tempDir == "" {
		return os.TempDir()
	}
	if err := EnsureDirs(y.tempDir); err != nil {
		return os.TempDir()
	}
	return y.tempDir
}

// pickSubtitleFile returns the SRT file for the most preferred language present
func pickSubtitleFile(dir, videoID string, langs []string) (string, bool) {
	for _, lang := range langs {
		matches, _ := filepath.Glob(filepath.Join(dir, fmt.Sprintf("%s.%s*.srt", videoID, lang)))
		if len(matches) > 0 {
			return matches[0], true
		}
	}
	matches, _ := filepath.Glob(filepath.Join(dir, videoID+"*.srt"))
	if len(matches) > 0 {
		return matches[0], true
	}
	return "", false
}

// parseSRT extracts text content from SRT format
func parseSRT(content string) []string {
	var lines []string

	content = strings.ReplaceAll(content, "\r\n", "\n")
	for block := range strings.SplitSeq(content, "\n\n") {
		blockLines := strings.Split(strings.TrimSpace(block), "\n")
		if len(blockLines) >= 3 {
			// Skip sequence number and timestamp
			for i := 2; i < len(blockLines); i++ {
				if strings.TrimSpace(blockLines[i]) != "" {
					lines = append(lines, strings.TrimSpace(blockLines[i]))
				}
			}
		}
	}

	return lines
}

// removeDuplicates eliminates consecutive repeated lines; auto-generated
// subtitles repeat the previous line as the next one scrolls in
func removeDuplicates(lines []string) []string {
	result := make([]string, 0, len(lines))
	prevLine := ""

	for _, line := range lines {
		isDuplicate := prevLine != "" && (strings.Contains(line, prevLine) || strings.Contains(prevLine, line))
		if !isDuplicate {
			result = append(result, line)
		}
		prevLine = line
	}

	return result
}
