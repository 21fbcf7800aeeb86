package assistant

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"time"

	"github.com/portfolioproxy/gateway/external"
	"github.com/portfolioproxy/gateway/internal/apperr"
	"github.com/portfolioproxy/gateway/internal/config"
	"github.com/portfolioproxy/gateway/internal/monitoring"
	"github.com/portfolioproxy/gateway/internal/retry"
)

// Run states as logged and counted.
const (
	StateCreated         = "created"
	StateMessageAttached = "message_attached"
	StateRunStarted      = "run_started"
	StatePolling         = "polling"
	StateCompleted       = "completed"
	StateFailed          = "failed"
	StateTimedOut        = "timed_out"
)

const upstreamMessage = "Failed to get a response from the assistant"

// citation matches source markers such as 【4:0†source】.
var citation = regexp.MustCompile(`【[^】]*】`)

// Orchestrator runs one conversation turn per Reply call.
type Orchestrator struct {
	api    API
	run    RunOptions
	policy retry.Policy
	poll   config.PollConfig
	reqLog *monitoring.RequestLogger
	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewOrchestrator creates an orchestrator. reqLog may be nil.
func NewOrchestrator(api API, cfg config.AssistantConfig, reqLog *monitoring.RequestLogger) *Orchestrator {
	if reqLog == nil {
		reqLog = monitoring.NewRequestLogger(monitoring.Nop())
	}
	return &Orchestrator{
		api: api,
		run: RunOptions{
			AssistantID:  cfg.AssistantID,
			Model:        cfg.Model,
			Instructions: cfg.Instructions,
		},
		policy: retry.LinearPolicy(cfg.Retry.MaxAttempts, cfg.Retry.BaseDelay),
		poll:   cfg.Poll,
		reqLog: reqLog,
		now:    time.Now,
		sleep:  sleepCtx,
	}
}

// turn carries per-call state for logging.
type turn struct {
	requestID string
	threadID  string
	runID     string
	polls     int
	started   time.Time
}

// Reply sends message on a fresh thread and returns the assistant's answer.
func (o *Orchestrator) Reply(ctx context.Context, message string) (string, error) {
	t := &turn{requestID: monitoring.RequestIDFromContext(ctx)}

	err := o.call(ctx, "create_thread", func(ctx context.Context) error {
		id, err := o.api.CreateThread(ctx)
		t.threadID = id
		return err
	})
	if err != nil {
		return "", o.fail(t, err)
	}
	o.logState(t, StateCreated, "")

	err = o.call(ctx, "add_message", func(ctx context.Context) error {
		return o.api.AddMessage(ctx, t.threadID, message)
	})
	if err != nil {
		return "", o.fail(t, err)
	}
	o.logState(t, StateMessageAttached, "")

	var run Run
	err = o.call(ctx, "create_run", func(ctx context.Context) error {
		var err error
		run, err = o.api.CreateRun(ctx, t.threadID, o.run)
		return err
	})
	if err != nil {
		return "", o.fail(t, err)
	}
	t.runID = run.ID
	o.logState(t, StateRunStarted, string(run.Status))

	run, err = o.await(ctx, t, run)
	if err != nil {
		return "", err
	}
	monitoring.ObserveRun(StateCompleted, t.polls)
	o.logState(t, StateCompleted, string(run.Status))

	var msgs []Message
	err = o.call(ctx, "list_messages", func(ctx context.Context) error {
		var err error
		msgs, err = o.api.ListMessages(ctx, t.threadID)
		return err
	})
	if err != nil {
		return "", o.classify(err)
	}

	text, ok := firstAssistantText(msgs)
	if !ok {
		return "", apperr.New(apperr.KindNoAssistantResponse, "No response from assistant").WithProvider(ProviderName)
	}
	return StripCitations(text), nil
}

// Validate retrieves the configured assistant.
func (o *Orchestrator) Validate(ctx context.Context) (Info, error) {
	var info Info
	err := o.call(ctx, "get_assistant", func(ctx context.Context) error {
		var err error
		info, err = o.api.GetAssistant(ctx, o.run.AssistantID)
		return err
	})
	if err != nil {
		return Info{}, fmt.Errorf("assistant %s: %w", o.run.AssistantID, o.classify(err))
	}
	return info, nil
}

// await polls run until it leaves the pending states or the ceiling passes.
func (o *Orchestrator) await(ctx context.Context, t *turn, run Run) (Run, error) {
	t.started = o.now()
	for run.Status.Pending() {
		elapsed := o.now().Sub(t.started)
		if elapsed >= o.poll.Timeout {
			monitoring.ObserveRun(StateTimedOut, t.polls)
			o.logState(t, StateTimedOut, string(run.Status))
			return run, apperr.New(apperr.KindTimeout,
				fmt.Sprintf("Assistant did not respond within %s", o.poll.Timeout)).WithProvider(ProviderName)
		}

		wait := min(o.interval(elapsed), o.poll.Timeout-elapsed)
		if err := o.sleep(ctx, wait); err != nil {
			return run, o.fail(t, err)
		}

		err := o.call(ctx, "get_run", func(ctx context.Context) error {
			var err error
			run, err = o.api.GetRun(ctx, t.threadID, t.runID)
			return err
		})
		if err != nil {
			return run, o.fail(t, err)
		}
		t.polls++
		o.logState(t, StatePolling, string(run.Status))
	}

	if run.Status != RunCompleted {
		monitoring.ObserveRun(StateFailed, t.polls)
		o.logState(t, StateFailed, string(run.Status))
		msg := fmt.Sprintf("Assistant run ended with status %s", run.Status)
		var cause error
		if run.LastError != "" {
			cause = errors.New(run.LastError)
		}
		return run, apperr.Wrap(apperr.KindUpstreamRunFailed, msg, cause).WithProvider(ProviderName)
	}
	return run, nil
}

// interval is the wait before the next poll: initial × multiplier^⌊elapsed/step⌋, capped.
func (o *Orchestrator) interval(elapsed time.Duration) time.Duration {
	steps := math.Floor(float64(elapsed) / float64(o.poll.GrowthStep))
	d := time.Duration(float64(o.poll.InitialInterval) * math.Pow(o.poll.Multiplier, steps))
	if d > o.poll.MaxInterval || d <= 0 {
		return o.poll.MaxInterval
	}
	return d
}

// call retries op per policy. Client errors other than 408/429 are final.
func (o *Orchestrator) call(ctx context.Context, name string, op func(ctx context.Context) error) error {
	return retry.Do(ctx, name, o.policy, func(ctx context.Context) error {
		err := op(ctx)
		var se *external.StatusError
		if errors.As(err, &se) && !se.Temporary() {
			return retry.Permanent(err)
		}
		return err
	})
}

func (o *Orchestrator) fail(t *turn, err error) error {
	if t.runID != "" {
		monitoring.ObserveRun(StateFailed, t.polls)
		o.logState(t, StateFailed, "")
	}
	return o.classify(err)
}

func (o *Orchestrator) classify(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return apperr.Wrap(apperr.KindTimeout, "Assistant request timed out", err).WithProvider(ProviderName)
	case external.StatusCode(err) == 404:
		return apperr.NotFound("Assistant resource not found", err).WithProvider(ProviderName)
	default:
		return apperr.Upstream(upstreamMessage, err).WithProvider(ProviderName)
	}
}

func (o *Orchestrator) logState(t *turn, state, status string) {
	info := &monitoring.RunStateInfo{
		RequestID: t.requestID,
		ThreadID:  t.threadID,
		RunID:     t.runID,
		State:     state,
		Status:    status,
		Polls:     t.polls,
	}
	if !t.started.IsZero() {
		info.Elapsed = o.now().Sub(t.started)
	}
	o.reqLog.LogRunState(info)
}

func firstAssistantText(msgs []Message) (string, bool) {
	for _, m := range msgs {
		if m.Role != RoleAssistant {
			continue
		}
		if len(m.Texts) == 0 {
			return "", false
		}
		return m.Texts[0], true
	}
	return "", false
}

// StripCitations removes 【...】 source markers.
func StripCitations(s string) string {
	return citation.ReplaceAllString(s, "")
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
