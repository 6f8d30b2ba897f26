// ABOUTME: Step enum, step ordering, and StepRecord status types for the workflow.
// ABOUTME: Parsing helpers keep the CLI --steps flag and resume logic on the same fixed vocabulary.
package workflow

import (
	"fmt"
	"strings"
	"time"
)

// Step identifies one discrete stage of the pipeline.
type Step string

const (
	StepVideo    Step = "video"    // video frame extraction
	StepConvert  Step = "convert"  // HEIC to JPEG conversion
	StepDescribe Step = "describe" // per-image description
	StepHTML     Step = "html"     // HTML report + CSV export
)

// AllSteps is the fixed logical execution order.
var AllSteps = []Step{StepVideo, StepConvert, StepDescribe, StepHTML}

// StepStatus is the orchestrator's view of a step's outcome.
type StepStatus string

const (
	StatusPending   StepStatus = "pending"
	StatusRunning   StepStatus = "running"
	StatusCompleted StepStatus = "completed"
	StatusFailed    StepStatus = "failed"
)

// StepRecord captures one pipeline step's outcome: its status, the item count
// it reported, and the exact arguments it was launched with.
type StepRecord struct {
	Name        Step       `json:"name"`
	Status      StepStatus `json:"status"`
	Items       int        `json:"items"`
	Args        []string   `json:"args,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// ParseSteps parses a comma-separated step list into the fixed logical order.
// The requested subset is reordered to match AllSteps so that e.g.
// "describe,convert" still runs convert before describe.
func ParseSteps(s string) ([]Step, error) {
	if strings.TrimSpace(s) == "" {
		return append([]Step(nil), AllSteps...), nil
	}

	requested := make(map[Step]bool)
	for _, part := range strings.Split(s, ",") {
		name := Step(strings.TrimSpace(part))
		switch name {
		case StepVideo, StepConvert, StepDescribe, StepHTML:
			requested[name] = true
		case "":
			continue
		default:
			return nil, fmt.Errorf("unknown step %q (valid: video, convert, describe, html)", name)
		}
	}

	steps := make([]Step, 0, len(requested))
	for _, step := range AllSteps {
		if requested[step] {
			steps = append(steps, step)
		}
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("no valid steps in %q", s)
	}
	return steps, nil
}
