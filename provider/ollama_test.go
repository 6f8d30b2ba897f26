// ABOUTME: Tests for the Ollama adapter against an httptest server.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func writeTestImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "photo.jpg")
	if err := os.WriteFile(path, []byte{0xFF, 0xD8, 0xFF, 0xE0}, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestOllamaDescribe(t *testing.T) {
	var gotReq ollamaGenerateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(ollamaGenerateResponse{
			Response: "A sunny beach with two umbrellas.",
			Model:    "llava",
		})
	}))
	defer srv.Close()

	p := newOllama(Config{BaseURL: srv.URL})
	result, err := p.Describe(context.Background(), Request{
		ImagePath: writeTestImage(t),
		Model:     "llava",
		Prompt:    "Describe this image.",
	})
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if result.Text != "A sunny beach with two umbrellas." {
		t.Errorf("Text = %q", result.Text)
	}
	if result.Model != "llava" {
		t.Errorf("Model = %q", result.Model)
	}
	if gotReq.Stream {
		t.Error("requests must disable streaming")
	}
	if len(gotReq.Images) != 1 || gotReq.Images[0] == "" {
		t.Errorf("image not attached: %+v", gotReq.Images)
	}
}

func TestOllamaServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := newOllama(Config{BaseURL: srv.URL})
	_, err := p.Describe(context.Background(), Request{ImagePath: writeTestImage(t), Model: "llava", Prompt: "x"})
	var se *ServerError
	if !errors.As(err, &se) {
		t.Fatalf("err = %T %v, want *ServerError", err, err)
	}
	if !IsRetryable(err) {
		t.Error("5xx must be retryable")
	}
}

func TestOllamaErrorField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ollamaGenerateResponse{Error: "model 'nope' not found"})
	}))
	defer srv.Close()

	p := newOllama(Config{BaseURL: srv.URL})
	_, err := p.Describe(context.Background(), Request{ImagePath: writeTestImage(t), Model: "nope", Prompt: "x"})
	if err == nil {
		t.Fatal("expected error from error field")
	}
}

func TestOllamaConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // immediately, to get a dead address

	p := newOllama(Config{BaseURL: srv.URL})
	_, err := p.Describe(context.Background(), Request{ImagePath: writeTestImage(t), Model: "llava", Prompt: "x"})
	var ne *NetworkError
	if !errors.As(err, &ne) {
		t.Fatalf("err = %T %v, want *NetworkError", err, err)
	}
}

func TestOllamaMissingImage(t *testing.T) {
	p := newOllama(Config{})
	_, err := p.Describe(context.Background(), Request{ImagePath: "/nonexistent.jpg", Model: "llava", Prompt: "x"})
	if err == nil {
		t.Fatal("expected error for missing image")
	}
	if IsRetryable(err) {
		t.Error("missing file must not be retried")
	}
}
