// ABOUTME: CLI entrypoint for mediascribe with run, per-step, and viewer subcommands.
// ABOUTME: Wires the workflow orchestrator, providers, media tools, and signal handling together.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

var version = "dev"

func main() {
	loadDotEnv(".env")
	os.Exit(run(os.Args[1:]))
}

// run dispatches the subcommand and returns the process exit code:
// 0 success, 1 runtime failure, 2 usage error.
func run(args []string) int {
	if len(args) == 0 {
		printHelp(os.Stderr, version)
		return 2
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "run":
		return cmdRun(rest)
	case "extract":
		return cmdExtract(rest)
	case "convert":
		return cmdConvert(rest)
	case "describe":
		return cmdDescribe(rest)
	case "html":
		return cmdHTML(rest)
	case "view":
		return cmdView(rest)
	case "version", "-version", "--version":
		fmt.Printf("mediascribe %s\n", version)
		return 0
	case "help", "-h", "-help", "--help":
		printHelp(os.Stdout, version)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
		printHelp(os.Stderr, version)
		return 2
	}
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted, shutting down...")
		cancel()
	}()
	return ctx, cancel
}
