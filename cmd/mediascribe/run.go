// ABOUTME: The run subcommand: full pipeline orchestration with resume and dry-run support.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mediascribe/mediascribe/config"
	"github.com/mediascribe/mediascribe/provider"
	"github.com/mediascribe/mediascribe/workflow"
)

func cmdRun(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	var (
		outputDir    string
		stepsArg     string
		providerName string
		model        string
		promptStyle  string
		resumeDir    string
		configPath   string
		dryRun       bool
		verbose      bool
	)
	fs.StringVar(&outputDir, "output-dir", "", "Output directory for all run artifacts")
	fs.StringVar(&stepsArg, "steps", "", "Comma-separated steps: video,convert,describe,html (default: all)")
	fs.StringVar(&providerName, "provider", "", "Vision provider: "+joinNames())
	fs.StringVar(&model, "model", "", "Model name (default: provider-specific)")
	fs.StringVar(&promptStyle, "prompt-style", "", "Prompt style name")
	fs.StringVar(&resumeDir, "resume", "", "Resume from an existing output directory")
	fs.StringVar(&configPath, "config", "", "Config file path")
	fs.BoolVar(&dryRun, "dry-run", false, "Print the step plan without executing anything")
	fs.BoolVar(&verbose, "verbose", false, "Echo the workflow log to stderr")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	steps, err := workflow.ParseSteps(stepsArg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	resume := resumeDir != ""
	if resume {
		outputDir = resumeDir
	}
	inputDir := fs.Arg(0)

	if outputDir == "" {
		fmt.Fprintln(os.Stderr, "error: --output-dir is required")
		return 2
	}
	if !resume && inputDir == "" {
		fmt.Fprintln(os.Stderr, "error: input directory argument is required")
		return 2
	}

	// Fresh runs take provider defaults from config so the choice is recorded
	// in the manifest and logs. On resume, unset values are reconstructed from
	// the prior run instead.
	if !resume {
		cfg, err := config.Load(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		if providerName == "" {
			providerName = cfg.Provider
		}
		if model == "" {
			model = cfg.Model
		}
		if model == "" {
			model = provider.DefaultModel(providerName)
		}
		if promptStyle == "" {
			promptStyle = cfg.PromptStyle
		}
	}

	runner, err := workflow.NewRunner(workflow.Options{
		InputDir:    inputDir,
		OutputDir:   outputDir,
		Steps:       steps,
		Provider:    providerName,
		Model:       model,
		PromptStyle: promptStyle,
		ConfigPath:  configPath,
		Resume:      resume,
		DryRun:      dryRun,
		Verbose:     verbose,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	ctx, cancel := signalContext()
	defer cancel()

	if err := runner.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func joinNames() string {
	return strings.Join(provider.Names(), ", ")
}
