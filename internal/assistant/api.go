// Package assistant drives one chat turn against a hosted assistant.
//
// DESIGN: The orchestrator talks to the assistant service through API, a
// narrow interface over the thread/message/run endpoints. OpenAIClient is
// the production implementation; tests use in-memory fakes.
//
// FLOW (one Reply call, nothing persists between calls):
//
//	created → message_attached → run_started → polling* → completed | failed | timed_out
package assistant

import "context"

// RunStatus is a run lifecycle state.
type RunStatus string

// Run statuses reported by the assistant service.
const (
	RunQueued         RunStatus = "queued"
	RunInProgress     RunStatus = "in_progress"
	RunCancelling     RunStatus = "cancelling"
	RunCompleted      RunStatus = "completed"
	RunFailed         RunStatus = "failed"
	RunCancelled      RunStatus = "cancelled"
	RunExpired        RunStatus = "expired"
	RunIncomplete     RunStatus = "incomplete"
	RunRequiresAction RunStatus = "requires_action"
)

// Pending reports whether the run may still change state on its own.
func (s RunStatus) Pending() bool {
	switch s {
	case RunQueued, RunInProgress, RunCancelling:
		return true
	}
	return false
}

// Run is the subset of run state the orchestrator needs.
type Run struct {
	ID        string
	Status    RunStatus
	LastError string
}

// Role of a thread message.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a thread message reduced to its text blocks.
type Message struct {
	Role  string
	Texts []string
}

// RunOptions configures a run.
type RunOptions struct {
	AssistantID  string
	Model        string // empty keeps the assistant's model
	Instructions string // empty keeps the assistant's instructions
}

// Info describes a configured assistant.
type Info struct {
	ID    string
	Name  string
	Model string
}

// API is the assistant service surface used by Orchestrator.
type API interface {
	CreateThread(ctx context.Context) (string, error)
	AddMessage(ctx context.Context, threadID, content string) error
	CreateRun(ctx context.Context, threadID string, opts RunOptions) (Run, error)
	GetRun(ctx context.Context, threadID, runID string) (Run, error)
	// ListMessages returns thread messages newest first.
	ListMessages(ctx context.Context, threadID string) ([]Message, error)
	GetAssistant(ctx context.Context, assistantID string) (Info, error)
}
