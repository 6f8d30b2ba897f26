// ABOUTME: HEIC to JPEG conversion by shelling out to heif-convert or ImageMagick.
// ABOUTME: The first available converter on PATH wins; conversion is all-or-nothing per file.
package media

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// converters, in preference order. Each entry builds the argv for one
// src-to-dst conversion.
var converters = []struct {
	binary string
	args   func(src, dst string) []string
}{
	{"heif-convert", func(src, dst string) []string { return []string{src, dst} }},
	{"magick", func(src, dst string) []string { return []string{src, dst} }},
	{"convert", func(src, dst string) []string { return []string{src, dst} }},
}

// FindConverter returns the first HEIC converter available on PATH.
func FindConverter() (string, error) {
	for _, c := range converters {
		if _, err := exec.LookPath(c.binary); err == nil {
			return c.binary, nil
		}
	}
	return "", fmt.Errorf("no HEIC converter found on PATH (tried heif-convert, magick, convert)")
}

// ConvertHEIC converts one HEIC file to a JPEG at dst using the named
// converter binary from FindConverter.
func ConvertHEIC(ctx context.Context, converter, src, dst string) error {
	var argsFor func(src, dst string) []string
	for _, c := range converters {
		if c.binary == converter {
			argsFor = c.args
			break
		}
	}
	if argsFor == nil {
		return fmt.Errorf("unknown converter %q", converter)
	}

	cmd := exec.CommandContext(ctx, converter, argsFor(src, dst)...)
	cmd.WaitDelay = 3 * time.Second
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return fmt.Errorf("convert %s: %s", filepath.Base(src), msg)
	}
	return nil
}

// JPEGNameFor returns the destination JPEG filename for a HEIC source.
func JPEGNameFor(src string) string {
	stem := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	return stem + ".jpg"
}
