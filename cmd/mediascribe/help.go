// ABOUTME: Help display for the mediascribe CLI with grouped commands, flags, and examples.
package main

import (
	"fmt"
	"io"
	"os"
)

// printHelp writes the top-level usage message.
func printHelp(w io.Writer, ver string) {
	fmt.Fprintf(w, "mediascribe %s — describe directories of images and videos with vision models\n", ver)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  mediascribe run --output-dir <dir> [flags] <input-dir>   Run the full pipeline")
	fmt.Fprintln(w, "  mediascribe run --resume <output-dir>                    Continue an interrupted run")
	fmt.Fprintln(w, "  mediascribe extract --output-dir <dir> <input-dir>       Extract video frames only")
	fmt.Fprintln(w, "  mediascribe convert --output-dir <dir> <input-dir>       Convert HEIC images only")
	fmt.Fprintln(w, "  mediascribe describe --output-dir <dir> [flags] <input-dir>  Describe images only")
	fmt.Fprintln(w, "  mediascribe html --output-dir <dir>                      Generate the HTML report and CSV")
	fmt.Fprintln(w, "  mediascribe view --output-dir <dir> [--addr host:port]   Serve a run directory over HTTP")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Run Flags:")
	fmt.Fprintln(w, "  --output-dir    Output directory; uniquely identifies a run (required)")
	fmt.Fprintln(w, "  --steps         Comma-separated subset: video,convert,describe,html (default: all)")
	fmt.Fprintln(w, "  --provider      Vision provider: ollama, openai, anthropic (default: ollama)")
	fmt.Fprintln(w, "  --model         Model name (default: provider-specific)")
	fmt.Fprintln(w, "  --prompt-style  Prompt style: detailed, concise, narrative, technical")
	fmt.Fprintln(w, "  --resume        Resume from an existing output directory")
	fmt.Fprintln(w, "  --dry-run       Print the step plan without executing anything")
	fmt.Fprintln(w, "  --config        Config file path (default: ~/.config/mediascribe/config.yaml)")
	fmt.Fprintln(w, "  --verbose       Echo the workflow log to stderr")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  mediascribe run --output-dir ./out --provider ollama ./photos")
	fmt.Fprintln(w, "  mediascribe run --output-dir ./out --steps describe,html --provider anthropic ./photos")
	fmt.Fprintln(w, "  mediascribe run --resume ./out")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment:")
	fmt.Fprintf(w, "  OPENAI_API_KEY     %s\n", envStatus("OPENAI_API_KEY"))
	fmt.Fprintf(w, "  ANTHROPIC_API_KEY  %s\n", envStatus("ANTHROPIC_API_KEY"))
	fmt.Fprintf(w, "  OLLAMA_HOST        %s\n", envValueOr("OLLAMA_HOST", "http://localhost:11434 (default)"))
}

// envStatus reports whether an API key variable is set, without printing it.
func envStatus(name string) string {
	if os.Getenv(name) != "" {
		return "set"
	}
	return "not set"
}

func envValueOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
