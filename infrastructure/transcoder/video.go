package transcoder

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"unicode/utf8"

	"github.com/AzielCF/piebot/domains/sticker"
	"github.com/AzielCF/piebot/pkg/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// VideoTranscoder shells out to ffmpeg to build animated WebP stickers.
type VideoTranscoder struct {
	ffmpegPath string
	tempDir    string
}

func NewVideoTranscoder(ffmpegPath, tempDir string) *VideoTranscoder {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &VideoTranscoder{ffmpegPath: ffmpegPath, tempDir: tempDir}
}

// Available reports whether the ffmpeg binary can be found.
func (t *VideoTranscoder) Available() bool {
	_, err := exec.LookPath(t.ffmpegPath)
	return err == nil
}

// TranscodeToAnimatedWebp writes the clip to a private temp file, runs ffmpeg
// and returns the encoded sticker. Both temp files are removed on every path.
func (t *VideoTranscoder) TranscodeToAnimatedWebp(ctx context.Context, input sticker.MediaBlob, maxDurationSeconds, fps, dimension, quality int) ([]byte, error) {
	if len(input.Data) == 0 {
		return nil, fmt.Errorf("empty input")
	}

	inPath, outPath := t.tempPaths(uuid.NewString(), input)
	defer utils.RemoveFiles(inPath, outPath)

	if err := os.WriteFile(inPath, input.Data, 0600); err != nil {
		return nil, fmt.Errorf("failed to write temp input: %w", err)
	}

	args := FFmpegArgs(inPath, outPath, maxDurationSeconds, fps, dimension, quality)
	cmd := exec.CommandContext(ctx, t.ffmpegPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	logrus.Debugf("[STICKER] ffmpeg %v", args)
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("ffmpeg interrupted: %w", ctxErr)
		}
		return nil, fmt.Errorf("ffmpeg failed: %w, stderr: %s", err, tail(stderr.String(), 512))
	}

	out, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read ffmpeg output: %w", err)
	}
	return out, nil
}

// tempPaths names the ffmpeg input after the clip's MIME type so the demuxer
// can detect the container from the extension.
func (t *VideoTranscoder) tempPaths(id string, input sticker.MediaBlob) (string, string) {
	return filepath.Join(t.tempDir, "in_"+id+"."+input.Extension()),
		filepath.Join(t.tempDir, "out_"+id+".webp")
}

// FFmpegArgs builds the command line for one animated attempt.
func FFmpegArgs(inPath, outPath string, maxDurationSeconds, fps, dimension, quality int) []string {
	d := strconv.Itoa(dimension)
	filter := fmt.Sprintf(
		"fps=%d,scale=%s:%s:force_original_aspect_ratio=decrease,pad=%s:%s:(ow-iw)/2:(oh-ih)/2:color=0x00000000",
		fps, d, d, d, d,
	)
	return []string{
		"-y",
		"-t", strconv.Itoa(maxDurationSeconds),
		"-i", inPath,
		"-vcodec", "libwebp",
		"-loop", "0",
		"-vf", filter,
		"-preset", "default",
		"-an",
		"-vsync", "0",
		"-qscale", strconv.Itoa(quality),
		outPath,
	}
}

// tail keeps at most the last n bytes of s without splitting a rune.
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	start := len(s) - n
	for start < len(s) && !utf8.RuneStart(s[start]) {
		start++
	}
	return s[start:]
}
