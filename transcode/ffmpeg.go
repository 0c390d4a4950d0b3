// Package transcode converts the legacy QuickTime container into MP4 so the
// video extractor and browsers can read it.
package transcode

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"mediaMetaViewer/media"
)

// FFmpeg shells out to an ffmpeg binary. Outputs are created in TempDir
// (os.TempDir when empty), never next to the source.
type FFmpeg struct {
	Command string
	TempDir string
	Log     logrus.FieldLogger
}

func New(command, tempDir string, log logrus.FieldLogger) *FFmpeg {
	if command == "" {
		command = "ffmpeg"
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &FFmpeg{Command: command, TempDir: tempDir, Log: log}
}

// Transcode writes an H.264/AAC MP4 copy of src, carrying over container
// metadata, and returns its path. The caller owns the returned file.
// Errors wrap media.ErrTranscodeFailed and leave no output file behind.
func (t *FFmpeg) Transcode(ctx context.Context, src string) (string, error) {
	if t.TempDir != "" {
		if err := os.MkdirAll(t.TempDir, 0755); err != nil {
			return "", fmt.Errorf("%w: %w", media.ErrTranscodeFailed, err)
		}
	}
	out, err := os.CreateTemp(t.TempDir, "transcode-*.mp4")
	if err != nil {
		return "", fmt.Errorf("%w: %w", media.ErrTranscodeFailed, err)
	}
	dst := out.Name()
	out.Close()

	cmd := exec.CommandContext(ctx, t.Command,
		"-y",
		"-loglevel", "error",
		"-i", src,
		"-map_metadata", "0",
		"-c:v", "libx264",
		"-c:a", "aac",
		"-movflags", "+faststart+use_metadata_tags",
		dst,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	t.Log.WithFields(logrus.Fields{"src": src, "dst": dst}).Info("converting legacy container to mp4")
	if err := cmd.Run(); err != nil {
		_ = os.Remove(dst)
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%w: %s: %w: %s", media.ErrTranscodeFailed, filepath.Base(src), err, msg)
		}
		return "", fmt.Errorf("%w: %s: %w", media.ErrTranscodeFailed, filepath.Base(src), err)
	}

	if fi, err := os.Stat(dst); err != nil || fi.Size() == 0 {
		_ = os.Remove(dst)
		return "", fmt.Errorf("%w: no output written for %s", media.ErrTranscodeFailed, filepath.Base(src))
	}
	return dst, nil
}
