// ABOUTME: Video frame extraction via the ffmpeg binary.
// ABOUTME: Frames are sampled at a fixed interval and written as JPEGs named after the source video.
package media

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"
)

// CheckFFmpeg verifies the ffmpeg binary is on PATH.
func CheckFFmpeg() error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return fmt.Errorf("ffmpeg not found on PATH (required for video frame extraction): %w", err)
	}
	return nil
}

// ExtractFrames samples one frame every intervalSeconds from videoPath into
// a per-video subdirectory of outDir, as <stem>/frame_NNNN.jpg. It returns
// the number of frames written. Extraction is all-or-nothing per video: on
// error, callers should treat the video as not extracted.
func ExtractFrames(ctx context.Context, videoPath, outDir string, intervalSeconds int) (int, error) {
	if intervalSeconds <= 0 {
		return 0, fmt.Errorf("frame interval must be positive, got %d", intervalSeconds)
	}

	stem := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	frameDir := filepath.Join(outDir, stem)
	if err := os.MkdirAll(frameDir, 0o755); err != nil {
		return 0, fmt.Errorf("create frame directory: %w", err)
	}
	pattern := filepath.Join(frameDir, "frame_%04d.jpg")

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-hide_banner", "-loglevel", "error",
		"-i", videoPath,
		"-vf", fmt.Sprintf("fps=1/%d", intervalSeconds),
		"-q:v", "2",
		"-y",
		pattern,
	)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process != nil {
			if pgid, err := syscall.Getpgid(cmd.Process.Pid); err == nil {
				_ = syscall.Kill(-pgid, syscall.SIGKILL)
			}
		}
		return cmd.Process.Kill()
	}
	cmd.WaitDelay = 3 * time.Second

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return 0, fmt.Errorf("ffmpeg on %s: %s", filepath.Base(videoPath), msg)
	}

	frames, err := filepath.Glob(filepath.Join(frameDir, "frame_*.jpg"))
	if err != nil {
		return 0, fmt.Errorf("count frames: %w", err)
	}
	return len(frames), nil
}
