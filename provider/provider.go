// ABOUTME: Provider interface and catalog for vision description backends.
// ABOUTME: Shared image loading helpers keep base64 encoding and media type detection in one place.
package provider

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Request is one image description call.
type Request struct {
	ImagePath string
	Model     string
	Prompt    string
}

// Result is a provider's description of one image.
type Result struct {
	Text  string
	Model string
}

// Provider describes images. Implementations are safe for sequential use by
// the describe step; Close releases any held connections.
type Provider interface {
	Name() string
	Describe(ctx context.Context, req Request) (*Result, error)
	Close() error
}

// Config carries provider construction options. APIKey falls back to the
// provider's conventional environment variable when empty.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration

	// HTTPClient overrides the default client; used by tests.
	HTTPClient *http.Client
}

const defaultTimeout = 2 * time.Minute

// Provider names accepted by Open.
const (
	NameOllama    = "ollama"
	NameOpenAI    = "openai"
	NameAnthropic = "anthropic"
)

// defaultModels maps each provider to the model used when none is configured.
var defaultModels = map[string]string{
	NameOllama:    "llava",
	NameOpenAI:    "gpt-4o-mini",
	NameAnthropic: "claude-3-5-haiku-latest",
}

// Open constructs the named provider.
func Open(name string, cfg Config) (Provider, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	switch name {
	case NameOllama:
		return newOllama(cfg), nil
	case NameOpenAI:
		return newOpenAI(cfg)
	case NameAnthropic:
		return newAnthropic(cfg)
	default:
		return nil, &ConfigurationError{Message: fmt.Sprintf("unknown provider %q (valid: %s)", name, strings.Join(Names(), ", "))}
	}
}

// Names returns the known provider names, sorted.
func Names() []string {
	names := make([]string, 0, len(defaultModels))
	for name := range defaultModels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultModel returns the fallback model for a provider, or "" if unknown.
func DefaultModel(name string) string {
	return defaultModels[name]
}

// loadImageBase64 reads an image file and returns its base64 encoding and
// media type.
func loadImageBase64(path string) (data, mediaType string, err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("read image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), mediaTypeFor(path), nil
}

// mediaTypeFor maps an image file extension to its MIME type. JPEG is the
// fallback since converted and extracted frames are always JPEG.
func mediaTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
