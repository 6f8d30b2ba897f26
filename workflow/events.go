// ABOUTME: Engine events plus an append-only NDJSON event log with a live.json status snapshot.
// ABOUTME: The viewer polls live.json; events.ndjson is the machine-readable history of a run.
package workflow

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// EventType identifies the kind of workflow lifecycle event.
type EventType string

const (
	EventWorkflowStarted   EventType = "workflow.started"
	EventWorkflowCompleted EventType = "workflow.completed"
	EventWorkflowFailed    EventType = "workflow.failed"
	EventStepStarted       EventType = "step.started"
	EventStepCompleted     EventType = "step.completed"
	EventStepFailed        EventType = "step.failed"
	EventStepSkipped       EventType = "step.skipped"
)

// Event is a lifecycle event emitted by the orchestrator during a run.
type Event struct {
	Type      EventType      `json:"type"`
	Step      Step           `json:"step,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// LiveState is the current run snapshot written to live.json after each event
// so the viewer can poll for status without parsing logs.
type LiveState struct {
	Status     string   `json:"status"`
	ActiveStep string   `json:"active_step"`
	Completed  []string `json:"completed"`
	Failed     []string `json:"failed"`
	StartedAt  string   `json:"started_at"`
	UpdatedAt  string   `json:"updated_at"`
	EventCount int      `json:"event_count"`
}

// ProgressLog appends workflow events to events.ndjson and maintains the
// live.json snapshot reflecting current run state.
type ProgressLog struct {
	eventsPath string
	livePath   string
	file       *os.File
	state      LiveState
	mu         sync.Mutex
	closed     bool
}

// NewProgressLog opens the NDJSON event log for appending and writes an
// initial live.json with pending status.
func NewProgressLog(rd *RunDir) (*ProgressLog, error) {
	f, err := os.OpenFile(rd.EventsPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}

	pl := &ProgressLog{
		eventsPath: rd.EventsPath(),
		livePath:   rd.LivePath(),
		file:       f,
		state: LiveState{
			Status:    "pending",
			Completed: []string{},
			Failed:    []string{},
		},
	}
	if err := pl.writeLive(); err != nil {
		f.Close()
		return nil, err
	}
	return pl, nil
}

// Handle appends the event to the NDJSON log, updates the live state, and
// atomically rewrites live.json. Safe to call after Close (it becomes a no-op).
func (p *ProgressLog) Handle(evt Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}
	now := time.Now().UTC().Format(time.RFC3339)

	// Append to the NDJSON file; live state is updated even on write failure.
	line, err := json.Marshal(evt)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[progress] marshal error: %v\n", err)
	} else {
		line = append(line, '\n')
		if _, err := p.file.Write(line); err != nil {
			fmt.Fprintf(os.Stderr, "[progress] write error: %v\n", err)
		}
	}

	switch evt.Type {
	case EventWorkflowStarted:
		p.state.Status = "running"
		p.state.StartedAt = evt.Timestamp.UTC().Format(time.RFC3339)
	case EventStepStarted:
		p.state.ActiveStep = string(evt.Step)
	case EventStepCompleted, EventStepSkipped:
		p.state.Completed = append(p.state.Completed, string(evt.Step))
		p.state.ActiveStep = ""
	case EventStepFailed:
		p.state.Failed = append(p.state.Failed, string(evt.Step))
		p.state.ActiveStep = ""
	case EventWorkflowCompleted:
		p.state.Status = "completed"
	case EventWorkflowFailed:
		p.state.Status = "failed"
	}

	p.state.EventCount++
	p.state.UpdatedAt = now

	if err := p.writeLive(); err != nil {
		fmt.Fprintf(os.Stderr, "[progress] live.json write error: %v\n", err)
	}
}

// Close closes the underlying NDJSON file. After Close, Handle is a no-op.
func (p *ProgressLog) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return p.file.Close()
}

// State returns a copy of the current live state.
func (p *ProgressLog) State() LiveState {
	p.mu.Lock()
	defer p.mu.Unlock()

	cp := p.state
	cp.Completed = append([]string(nil), p.state.Completed...)
	cp.Failed = append([]string(nil), p.state.Failed...)
	return cp
}

// writeLive atomically writes the current state to live.json. Caller holds p.mu.
func (p *ProgressLog) writeLive() error {
	return writeJSONAtomic(p.livePath, p.state)
}
