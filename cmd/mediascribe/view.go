// ABOUTME: The view subcommand: serves a run directory over local HTTP.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mediascribe/mediascribe/viewer"
	"github.com/mediascribe/mediascribe/workflow"
)

func cmdView(args []string) int {
	fs := flag.NewFlagSet("view", flag.ContinueOnError)
	outputDir := fs.String("output-dir", "", "Run directory to serve")
	addr := fs.String("addr", "127.0.0.1:8090", "Listen address")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *outputDir == "" {
		fmt.Fprintln(os.Stderr, "error: --output-dir is required")
		return 2
	}
	if _, err := os.Stat(*outputDir); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	rd, err := workflow.OpenRunDir(*outputDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	srv := viewer.NewServer(rd)
	if err := srv.ListenAndServe(*addr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
