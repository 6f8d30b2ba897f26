// ABOUTME: Reconstructs a prior run's configuration and step completion from its on-disk state.
// ABOUTME: Prefers the structured manifest; falls back to scraping legacy workflow logs, accepting both completion marker spellings.
package workflow

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ResumeState is everything the orchestrator needs to continue a previously
// interrupted run: the step configuration that was used and which steps
// reached an unambiguous completion marker.
type ResumeState struct {
	Provider    string
	Model       string
	PromptStyle string
	ConfigPath  string
	InputDir    string
	Completed   map[Step]bool
	StepArgs    map[Step][]string
}

// completion marker suffixes. The older form appeared as
// "Step 'X' completed successfully", the newer as "Step 'X' completed";
// both are equivalent completion signals. The longer suffix must be checked
// first so the shorter one does not shadow it.
const (
	stepPrefix        = "Step '"
	startPrefix       = "Starting step '"
	markerOldSuffix   = "' completed successfully"
	markerNewSuffix   = "' completed"
	markerFailMiddle  = "' failed"
)

// LoadResumeState reconstructs resume state for an existing output directory.
// The structured manifest wins when present; otherwise the legacy text logs
// are scraped. Ambiguity is resolved conservatively: a step without a
// recognizable completion marker is treated as not completed, even if its
// output exists on disk.
func LoadResumeState(rd *RunDir) (*ResumeState, error) {
	if m, err := LoadManifest(rd.ManifestPath()); err == nil {
		return resumeStateFromManifest(m), nil
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("load manifest: %w", err)
	}
	return ParseWorkflowLogs(rd.LogsDir())
}

// resumeStateFromManifest converts a manifest into ResumeState.
func resumeStateFromManifest(m *Manifest) *ResumeState {
	rs := &ResumeState{
		Provider:    m.Provider,
		Model:       m.Model,
		PromptStyle: m.PromptStyle,
		ConfigPath:  m.ConfigPath,
		InputDir:    m.InputDir,
		Completed:   make(map[Step]bool),
		StepArgs:    make(map[Step][]string),
	}
	for _, rec := range m.Steps {
		if rec.Status == StatusCompleted {
			rs.Completed[rec.Name] = true
		}
		if len(rec.Args) > 0 {
			rs.StepArgs[rec.Name] = rec.Args
		}
	}
	return rs
}

// ParseWorkflowLogs scans workflow_*.log files under logsDir line by line,
// extracting step invocations (for flag recovery) and completion markers.
// Files are processed in name order; later lines win.
func ParseWorkflowLogs(logsDir string) (*ResumeState, error) {
	paths, err := filepath.Glob(filepath.Join(logsDir, "workflow_*.log"))
	if err != nil {
		return nil, fmt.Errorf("glob workflow logs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no workflow logs found in %s", logsDir)
	}
	sort.Strings(paths)

	rs := &ResumeState{
		Completed: make(map[Step]bool),
		StepArgs:  make(map[Step][]string),
	}

	for _, path := range paths {
		if err := parseOneLog(path, rs); err != nil {
			return nil, err
		}
	}
	return rs, nil
}

// parseOneLog scans a single workflow log into the accumulating ResumeState.
func parseOneLog(path string, rs *ResumeState) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open workflow log: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()

		if idx := strings.Index(line, startPrefix); idx >= 0 {
			rest := line[idx+len(startPrefix):]
			name, args, ok := splitInvocation(rest)
			if !ok {
				continue
			}
			step := Step(name)
			rs.StepArgs[step] = args
			// A later invocation of a step supersedes any earlier completion.
			rs.Completed[step] = false
			harvestFlags(args, rs)
			continue
		}

		if name, ok := completedStepName(line); ok {
			rs.Completed[Step(name)] = true
			continue
		}

		if idx := strings.Index(line, stepPrefix); idx >= 0 {
			rest := line[idx+len(stepPrefix):]
			if fail := strings.Index(rest, markerFailMiddle); fail >= 0 {
				rs.Completed[Step(rest[:fail])] = false
			}
		}
	}
	return scanner.Err()
}

// completedStepName extracts the step name from a completion marker line.
// The name is everything between the opening quote after "Step '" and
// whichever completion suffix matched.
func completedStepName(line string) (string, bool) {
	idx := strings.Index(line, stepPrefix)
	if idx < 0 {
		return "", false
	}
	rest := line[idx+len(stepPrefix):]

	if end := strings.Index(rest, markerOldSuffix); end >= 0 {
		return rest[:end], true
	}
	if end := strings.Index(rest, markerNewSuffix); end >= 0 {
		return rest[:end], true
	}
	return "", false
}

// splitInvocation splits "name': cmd arg arg ..." into the step name and args.
func splitInvocation(rest string) (name string, args []string, ok bool) {
	end := strings.Index(rest, "':")
	if end < 0 {
		return "", nil, false
	}
	name = rest[:end]
	args = strings.Fields(strings.TrimSpace(rest[end+2:]))
	return name, args, true
}

// harvestFlags pulls provider, model, and prompt-style values out of a step's
// recorded argument list.
func harvestFlags(args []string, rs *ResumeState) {
	for i := 0; i+1 < len(args); i++ {
		switch args[i] {
		case "--provider":
			rs.Provider = args[i+1]
		case "--model":
			rs.Model = args[i+1]
		case "--prompt-style":
			rs.PromptStyle = args[i+1]
		case "--config":
			rs.ConfigPath = args[i+1]
		}
	}
	// Input dir is the trailing positional argument of extract/convert/describe
	// invocations: the last token, provided it is not a flag or a flag's value.
	if len(args) >= 3 {
		last, prev := args[len(args)-1], args[len(args)-2]
		if !strings.HasPrefix(last, "--") && !strings.HasPrefix(prev, "--") {
			rs.InputDir = last
		}
	}
}
