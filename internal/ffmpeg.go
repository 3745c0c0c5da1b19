package internal

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Audio handles audio file operations using FFmpeg
type Audio struct {
	cmdRunner CommandRunner
	tempDir   string
	verbose   bool
}

// NewAudio creates a new audio processor
func NewAudio(cmdRunner CommandRunner, tempDir string, verbose bool) *Audio {
	return &Audio{
		cmdRunner: cmdRunner,
		tempDir:   tempDir,
		verbose:   verbose,
	}
}

// Workspace returns a copy of a that writes into a new directory under the
// temp dir, plus a function removing that directory
func (a *Audio) Workspace() (*Audio, func(), error) {
	if err := EnsureDirs(a.tempDir); err != nil {
		return nil, nil, fmt.Errorf("creating temp directory: %w", err)
	}
	dir, err := os.MkdirTemp(a.tempDir, "audio-")
	if err != nil {
		return nil, nil, fmt.Errorf("creating work directory: %w", err)
	}

	ws := *a
	ws.tempDir = dir
	return &ws, func() {
		if err := os.RemoveAll(dir); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to remove %s: %v\n", dir, err)
		}
	}, nil
}

// Duration returns the audio file duration in seconds
func (a *Audio) Duration(ctx context.Context, audioFile string) (float64, error) {
	output, err := a.cmdRunner.Run(ctx, "ffprobe",
		"-i", audioFile,
		"-show_entries", "format=duration",
		"-v", "quiet",
		"-of", "csv=p=0")

	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w\nOutput: %s", err, string(output))
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, fmt.Errorf("parsing duration: %w", err)
	}

	return duration, nil
}

// Normalize converts any audio file to 16 kHz mono 16-bit PCM WAV
func (a *Audio) Normalize(ctx context.Context, audioFile string) (string, error) {
	if err := EnsureDirs(a.tempDir); err != nil {
		return "", fmt.Errorf("creating temp directory: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(audioFile), filepath.Ext(audioFile))
	output := filepath.Join(a.tempDir, base+"_16k.wav")

	cmdOutput, err := a.cmdRunner.Run(ctx, "ffmpeg",
		"-v", "quiet",
		"-i", audioFile,
		"-ar", "16000",
		"-ac", "1",
		"-c:a", "pcm_s16le",
		"-y", output)
	if err != nil {
		return "", fmt.Errorf("ffmpeg failed: %w\nOutput: %s", err, string(cmdOutput))
	}

	if a.verbose {
		fmt.Printf("Normalized audio to %s\n", output)
	}

	return output, nil
}

// Split divides an audio file into numChunks chunks of equal duration
func (a *Audio) Split(ctx context.Context, audioFile string, numChunks int) ([]string, error) {
	duration, err := a.Duration(ctx, audioFile)
	if err != nil {
		return nil, fmt.Errorf("getting audio duration: %w", err)
	}

	chunkDuration := int(math.Ceil(duration / float64(numChunks)))
	return a.splitEvery(ctx, audioFile, numChunks, chunkDuration)
}

// SplitByDuration divides an audio file into chunks no longer than maxSeconds
func (a *Audio) SplitByDuration(ctx context.Context, audioFile string, maxSeconds int) ([]string, error) {
	duration, err := a.Duration(ctx, audioFile)
	if err != nil {
		return nil, fmt.Errorf("getting audio duration: %w", err)
	}

	numChunks := int(math.Ceil(duration / float64(maxSeconds)))
	if numChunks <= 1 {
		return []string{audioFile}, nil
	}

	return a.splitEvery(ctx, audioFile, numChunks, maxSeconds)
}

func (a *Audio) splitEvery(ctx context.Context, audioFile string, numChunks, chunkDuration int) ([]string, error) {
	if err := EnsureDirs(a.tempDir); err != nil {
		return nil, fmt.Errorf("creating temp directory: %w", err)
	}

	ext := filepath.Ext(audioFile)
	chunks := make([]string, 0, numChunks)

	for i := range numChunks {
		start := i * chunkDuration
		output := filepath.Join(a.tempDir, fmt.Sprintf("%s_chunk_%d%s", strings.TrimSuffix(filepath.Base(audioFile), ext), i, ext))

		if err := a.Chunk(ctx, audioFile, start, chunkDuration, output); err != nil {
			cleanupFiles(chunks...)
			return nil, fmt.Errorf("creating chunk %d: %w", i, err)
		}
		chunks = append(chunks, output)
	}

	return chunks, nil
}

// Chunk extracts a segment from an audio file
func (a *Audio) Chunk(ctx context.Context, audioFile string, start, duration int, output string) error {
	cmdOutput, err := a.cmdRunner.Run(ctx, "ffmpeg",
		"-v", "quiet",
		"-i", audioFile,
		"-ss", strconv.Itoa(start),
		"-t", strconv.Itoa(duration),
		"-c:a", "copy",
		"-y", output)

	if err != nil {
		return fmt.Errorf("ffmpeg failed: %w\nOutput: %s", err, string(cmdOutput))
	}
	return nil
}
