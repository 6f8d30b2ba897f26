// ABOUTME: Top-level workflow orchestrator: decides the ordered steps, runs each as a subprocess,
// ABOUTME: and maintains the status log, manifest, event log, and resume bookkeeping.
package workflow

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Options holds the explicit configuration for one workflow invocation.
// Everything the run needs is threaded through here; nothing is read from
// ambient globals mid-run.
type Options struct {
	InputDir    string
	OutputDir   string
	Steps       []Step
	Provider    string
	Model       string
	PromptStyle string

	// ConfigPath is forwarded to every config-consuming step subprocess, so a
	// custom --config given to the orchestrator governs frame intervals and
	// provider credentials in the steps too.
	ConfigPath string

	Resume  bool
	DryRun  bool
	Verbose bool

	// Binary is the executable step subprocesses are launched from.
	// Defaults to the running executable.
	Binary string

	// EventHandler receives a copy of every workflow event, in addition to the
	// on-disk event log. Optional.
	EventHandler func(Event)

	Stdout io.Writer
	Stderr io.Writer
}

// Runner is the workflow state machine. States are: not started, running
// step n, step n failed (terminal for this invocation), completed. A failed
// invocation is continued by a later --resume, never retried in-process.
type Runner struct {
	opts     Options
	rd       *RunDir
	runID    string
	started  time.Time
	records  []StepRecord
	manifest *Manifest
	status   *StatusLog
	progress *ProgressLog
	logFile  *os.File
}

// NewRunner validates options and prepares a workflow runner.
func NewRunner(opts Options) (*Runner, error) {
	if opts.OutputDir == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	if len(opts.Steps) == 0 {
		opts.Steps = append([]Step(nil), AllSteps...)
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Binary == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("resolve step binary: %w", err)
		}
		opts.Binary = exe
	}
	return &Runner{opts: opts}, nil
}

// Run executes the workflow. On resume it reconstructs prior state first,
// skips fully completed steps, and always proceeds into the describe step in
// continue mode. The first step failure halts the run; artifacts stay on disk
// for the next --resume invocation.
func (r *Runner) Run(ctx context.Context) error {
	if r.opts.DryRun {
		return r.printPlan()
	}

	rd, err := OpenRunDir(r.opts.OutputDir)
	if err != nil {
		return err
	}
	r.rd = rd

	var resume *ResumeState
	if r.opts.Resume {
		resume, err = LoadResumeState(rd)
		if err != nil {
			return fmt.Errorf("reconstruct prior run state: %w", err)
		}
		r.adoptResumeConfig(resume)
	}
	if r.opts.InputDir == "" {
		return fmt.Errorf("input directory is required (and was not recoverable from prior logs)")
	}

	r.runID = newRunID()
	r.started = time.Now()

	r.logFile, err = os.OpenFile(rd.WorkflowLogPath(r.runID), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open workflow log: %w", err)
	}
	defer r.logFile.Close()

	r.progress, err = NewProgressLog(rd)
	if err != nil {
		return fmt.Errorf("open progress log: %w", err)
	}
	defer r.progress.Close()

	r.status = NewStatusLog(rd, r.started)
	r.initRecords(resume)
	r.manifest = &Manifest{
		RunID:       r.runID,
		InputDir:    r.opts.InputDir,
		Provider:    r.opts.Provider,
		Model:       r.opts.Model,
		PromptStyle: r.opts.PromptStyle,
		ConfigPath:  r.opts.ConfigPath,
		StartedAt:   r.started,
		Steps:       r.records,
	}

	r.emit(Event{Type: EventWorkflowStarted, Data: map[string]any{"resumed": r.opts.Resume}})
	r.logf("Workflow run %s starting (input: %s)", r.runID, r.opts.InputDir)
	r.writeStatus()

	runner := &StepRunner{Binary: r.opts.Binary}

	for i := range r.records {
		rec := &r.records[i]
		step := rec.Name

		if rec.Status == StatusCompleted && step != StepDescribe {
			r.logf("Skipping step '%s' (already completed)", step)
			r.emit(Event{Type: EventStepSkipped, Step: step})
			continue
		}

		if step == StepDescribe && r.opts.Resume {
			done, countErr := NewLedger(rd).Count()
			if countErr != nil {
				return fmt.Errorf("read progress ledger: %w", countErr)
			}
			fmt.Fprintf(r.opts.Stdout, "%d descriptions already recorded; they will be preserved and remaining images processed\n", done)
			r.logf("Resuming step 'describe' with %d images already in the progress ledger", done)
		}

		args := r.buildStepArgs(step)
		rec.Args = append([]string{r.opts.Binary}, args...)
		rec.Status = StatusRunning
		now := time.Now()
		rec.StartedAt = &now
		r.saveManifest()
		r.writeStatus()

		r.logf("Starting step '%s': %s %s", step, r.opts.Binary, strings.Join(args, " "))
		r.emit(Event{Type: EventStepStarted, Step: step})
		fmt.Fprintf(r.opts.Stdout, "Running step '%s'...\n", step)

		result, runErr := runner.Run(ctx, step, args, rd.StepLogPath(step, r.runID))
		if runErr != nil {
			rec.Status = StatusFailed
			rec.Error = runErr.Error()
			done := time.Now()
			rec.CompletedAt = &done
			if result != nil {
				for _, line := range result.LastLines {
					r.logf("  [%s] %s", step, line)
				}
			}
			r.logf("Step '%s' failed: %v", step, runErr)
			r.emit(Event{Type: EventStepFailed, Step: step, Data: map[string]any{"reason": runErr.Error()}})
			r.emit(Event{Type: EventWorkflowFailed, Data: map[string]any{"step": string(step)}})
			r.saveManifest()
			r.writeStatus()
			fmt.Fprintf(r.opts.Stderr, "step '%s' failed; re-run with --resume %s to continue\n", step, r.opts.OutputDir)
			return fmt.Errorf("step %q failed: %w", step, runErr)
		}

		rec.Status = StatusCompleted
		if result.Items >= 0 {
			rec.Items = result.Items
		}
		if step == StepDescribe {
			// The subprocess reports only its own pass; across resumes the
			// ledger holds the cumulative total.
			if done, countErr := NewLedger(rd).Count(); countErr == nil && done > rec.Items {
				rec.Items = done
			}
		}
		done := time.Now()
		rec.CompletedAt = &done
		r.logf("Step '%s' completed (%d items)", step, rec.Items)
		r.emit(Event{Type: EventStepCompleted, Step: step, Data: map[string]any{"items": rec.Items}})
		r.saveManifest()
		r.writeStatus()
	}

	r.emit(Event{Type: EventWorkflowCompleted})
	r.logf("Workflow run %s completed in %s", r.runID, time.Since(r.started).Round(time.Second))
	r.writeStatus()
	fmt.Fprintf(r.opts.Stdout, "Workflow completed in %s.\n", time.Since(r.started).Round(time.Second))
	return nil
}

// adoptResumeConfig fills unset provider/model/prompt options from the
// reconstructed prior state, so a bare `--resume <dir>` continues with the
// original configuration.
func (r *Runner) adoptResumeConfig(rs *ResumeState) {
	if r.opts.Provider == "" {
		r.opts.Provider = rs.Provider
	}
	if r.opts.Model == "" {
		r.opts.Model = rs.Model
	}
	if r.opts.PromptStyle == "" {
		r.opts.PromptStyle = rs.PromptStyle
	}
	if r.opts.ConfigPath == "" {
		r.opts.ConfigPath = rs.ConfigPath
	}
	if r.opts.InputDir == "" {
		r.opts.InputDir = rs.InputDir
	}
}

// initRecords builds the ordered StepRecord list for the requested steps,
// carrying completion over from resume state. The describe step is never
// pre-marked completed-and-skippable from partial output alone: only an
// unambiguous completion marker counts, and even then it re-enters in
// continue mode when resumed explicitly.
func (r *Runner) initRecords(rs *ResumeState) {
	r.records = make([]StepRecord, 0, len(r.opts.Steps))
	for _, step := range r.opts.Steps {
		rec := StepRecord{Name: step, Status: StatusPending}
		if rs != nil && rs.Completed[step] {
			rec.Status = StatusCompleted
		}
		r.records = append(r.records, rec)
	}
}

// buildStepArgs resolves the subprocess argument list for one step. The
// config path goes to the steps that read configuration (extract for the
// frame interval, describe for provider credentials); convert and html take
// none.
func (r *Runner) buildStepArgs(step Step) []string {
	switch step {
	case StepVideo:
		args := []string{"extract", "--output-dir", r.opts.OutputDir}
		if r.opts.ConfigPath != "" {
			args = append(args, "--config", r.opts.ConfigPath)
		}
		return append(args, r.opts.InputDir)
	case StepConvert:
		return []string{"convert", "--output-dir", r.opts.OutputDir, r.opts.InputDir}
	case StepDescribe:
		args := []string{"describe", "--output-dir", r.opts.OutputDir}
		if r.opts.Provider != "" {
			args = append(args, "--provider", r.opts.Provider)
		}
		if r.opts.Model != "" {
			args = append(args, "--model", r.opts.Model)
		}
		if r.opts.PromptStyle != "" {
			args = append(args, "--prompt-style", r.opts.PromptStyle)
		}
		if r.opts.ConfigPath != "" {
			args = append(args, "--config", r.opts.ConfigPath)
		}
		return append(args, r.opts.InputDir)
	case StepHTML:
		return []string{"html", "--output-dir", r.opts.OutputDir}
	}
	return nil
}

// printPlan prints the steps and arguments a run would execute, touching
// nothing on disk.
func (r *Runner) printPlan() error {
	fmt.Fprintf(r.opts.Stdout, "Dry run. Plan for input %s, output %s:\n", r.opts.InputDir, r.opts.OutputDir)
	for _, step := range r.opts.Steps {
		fmt.Fprintf(r.opts.Stdout, "  %s: %s %s\n", step, r.opts.Binary, strings.Join(r.buildStepArgs(step), " "))
	}
	return nil
}

// writeStatus refreshes the status snapshot from the current step records.
func (r *Runner) writeStatus() {
	lines := make([]string, 0, len(r.records))
	for _, rec := range r.records {
		lines = append(lines, StatusLine(rec))
	}
	if err := r.status.Write(lines); err != nil {
		fmt.Fprintf(r.opts.Stderr, "warning: %v\n", err)
	}
}

// saveManifest persists the current step records to the structured manifest.
func (r *Runner) saveManifest() {
	r.manifest.Steps = r.records
	if err := r.manifest.Save(r.rd.ManifestPath()); err != nil {
		fmt.Fprintf(r.opts.Stderr, "warning: save manifest: %v\n", err)
	}
}

// logf writes a timestamped line to the workflow log, echoing to stderr in
// verbose mode. These lines are also the legacy resume parser's input, so the
// step start/completion formats are load-bearing.
func (r *Runner) logf(format string, args ...any) {
	line := fmt.Sprintf("%s %s", time.Now().Format(time.RFC3339), fmt.Sprintf(format, args...))
	fmt.Fprintln(r.logFile, line)
	if r.opts.Verbose {
		fmt.Fprintf(r.opts.Stderr, "[workflow] %s\n", line)
	}
}

// emit sends an event to the progress log and any configured handler.
func (r *Runner) emit(evt Event) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}
	r.progress.Handle(evt)
	if r.opts.EventHandler != nil {
		r.opts.EventHandler(evt)
	}
}

// newRunID generates a ULID run identifier using crypto/rand entropy.
func newRunID() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
