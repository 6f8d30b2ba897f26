// ABOUTME: Per-step subcommands invoked by the orchestrator as subprocesses: extract, convert, describe, html.
// ABOUTME: Each prints a completion-count line as its last output, which the step runner parses.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mediascribe/mediascribe/config"
	"github.com/mediascribe/mediascribe/describe"
	"github.com/mediascribe/mediascribe/media"
	"github.com/mediascribe/mediascribe/provider"
	"github.com/mediascribe/mediascribe/render"
	"github.com/mediascribe/mediascribe/workflow"
)

// cmdExtract samples frames from every video in the input directory into the
// run's frames directory. All-or-nothing: any ffmpeg failure fails the step.
func cmdExtract(args []string) int {
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	outputDir := fs.String("output-dir", "", "Output directory")
	configPath := fs.String("config", "", "Config file path")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	inputDir := fs.Arg(0)
	if *outputDir == "" || inputDir == "" {
		fmt.Fprintln(os.Stderr, "error: --output-dir and input directory are required")
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	rd, err := workflow.OpenRunDir(*outputDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	videos, err := media.Videos(inputDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if len(videos) == 0 {
		fmt.Println("0 videos extracted")
		return 0
	}

	if err := media.CheckFFmpeg(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	ctx, cancel := signalContext()
	defer cancel()

	for _, video := range videos {
		frames, err := media.ExtractFrames(ctx, video, rd.FramesDir(), cfg.FrameInterval)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		fmt.Printf("%s: %d frames\n", filepath.Base(video), frames)
	}
	fmt.Printf("%d videos extracted\n", len(videos))
	return 0
}

// cmdConvert converts every HEIC file in the input directory to JPEG in the
// run's converted directory. Already-converted files are left in place.
func cmdConvert(args []string) int {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	outputDir := fs.String("output-dir", "", "Output directory")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	inputDir := fs.Arg(0)
	if *outputDir == "" || inputDir == "" {
		fmt.Fprintln(os.Stderr, "error: --output-dir and input directory are required")
		return 2
	}

	rd, err := workflow.OpenRunDir(*outputDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	heic, err := media.HEICFiles(inputDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if len(heic) == 0 {
		fmt.Println("0 images converted")
		return 0
	}

	converter, err := media.FindConverter()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	ctx, cancel := signalContext()
	defer cancel()

	for _, src := range heic {
		dst := filepath.Join(rd.ConvertedDir(), media.JPEGNameFor(src))
		if _, err := os.Stat(dst); err == nil {
			fmt.Printf("%s: already converted\n", filepath.Base(src))
			continue
		}
		if err := media.ConvertHEIC(ctx, converter, src, dst); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		fmt.Printf("%s -> %s\n", filepath.Base(src), filepath.Base(dst))
	}
	fmt.Printf("%d images converted\n", len(heic))
	return 0
}

// cmdDescribe runs the description loop over the input directory plus
// extracted frames and converted images.
func cmdDescribe(args []string) int {
	fs := flag.NewFlagSet("describe", flag.ContinueOnError)
	outputDir := fs.String("output-dir", "", "Output directory")
	providerName := fs.String("provider", "", "Vision provider")
	model := fs.String("model", "", "Model name")
	promptStyle := fs.String("prompt-style", "", "Prompt style name")
	configPath := fs.String("config", "", "Config file path")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	inputDir := fs.Arg(0)
	if *outputDir == "" || inputDir == "" {
		fmt.Fprintln(os.Stderr, "error: --output-dir and input directory are required")
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	name := *providerName
	if name == "" {
		name = cfg.Provider
	}
	mdl := *model
	if mdl == "" {
		mdl = cfg.Model
	}
	if mdl == "" {
		mdl = provider.DefaultModel(name)
	}
	style := *promptStyle
	if style == "" {
		style = cfg.PromptStyle
	}

	styles, err := config.LoadStyles(cfg.PromptsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	prompt, err := styles.Prompt(style)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	p, err := provider.Open(name, providerConfig(name, cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer p.Close()

	rd, err := workflow.OpenRunDir(*outputDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	// The index is a best-effort cache; failing to open it never blocks
	// describing.
	var ix *describe.Index
	if opened, err := describe.OpenIndex(rd.IndexPath()); err != nil {
		fmt.Fprintf(os.Stderr, "warning: description index unavailable: %v\n", err)
	} else {
		ix = opened
		defer ix.Close()
	}

	ctx, cancel := signalContext()
	defer cancel()

	w := &describe.Writer{
		Provider: p,
		Model:    mdl,
		Style:    style,
		Prompt:   prompt,
		RunDir:   rd,
		Retry:    provider.DefaultRetryPolicy(),
		Index:    ix,
	}
	if _, err := w.Run(ctx, inputDir); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// cmdHTML renders the report and CSV from the descriptions file and rebuilds
// the search index.
func cmdHTML(args []string) int {
	fs := flag.NewFlagSet("html", flag.ContinueOnError)
	outputDir := fs.String("output-dir", "", "Output directory")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *outputDir == "" {
		fmt.Fprintln(os.Stderr, "error: --output-dir is required")
		return 2
	}

	rd, err := workflow.OpenRunDir(*outputDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	entries, err := describe.ReadEntries(rd.DescriptionsPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	if err := render.WriteReport(rd.ReportPath(), entries); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if err := render.WriteCSV(rd.CSVPath(), entries); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	if ix, err := describe.OpenIndex(rd.IndexPath()); err != nil {
		fmt.Fprintf(os.Stderr, "warning: description index unavailable: %v\n", err)
	} else {
		if err := ix.Rebuild(entries); err != nil {
			fmt.Fprintf(os.Stderr, "warning: index rebuild: %v\n", err)
		}
		ix.Close()
	}

	fmt.Printf("%d entries rendered\n", len(entries))
	return 0
}

// providerConfig assembles the provider.Config for the named provider from
// the loaded config file.
func providerConfig(name string, cfg *config.Config) provider.Config {
	switch name {
	case provider.NameOllama:
		return provider.Config{BaseURL: cfg.Ollama.BaseURL}
	case provider.NameOpenAI:
		return provider.Config{APIKey: cfg.OpenAI.APIKey, BaseURL: cfg.OpenAI.BaseURL}
	case provider.NameAnthropic:
		return provider.Config{APIKey: cfg.Anthropic.APIKey, BaseURL: cfg.Anthropic.BaseURL}
	default:
		return provider.Config{}
	}
}
