package conversation

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/oakandvine/concierge-widget/internal/markdown"
	"github.com/oakandvine/concierge-widget/internal/observability/metrics"
	"github.com/oakandvine/concierge-widget/pkg/logging"
)

// ApologyMessage is the fixed local fallback turn shown when a chat
// request fails. It is never sent to or stored by the backend.
const ApologyMessage = "I apologize, but I'm having trouble connecting right now. Please try again in a moment, or contact the front desk for immediate assistance."

// DefaultLeadPromptDelay separates an assistant reply from the
// lead-capture prompt it triggered, so the prompt does not interrupt
// the reveal of the message.
const DefaultLeadPromptDelay = time.Second

// ScheduleFunc defers fn by d and returns a cancel function.
type ScheduleFunc func(d time.Duration, fn func()) (cancel func())

// Controller owns conversation history and the chat exchange. Exactly
// one request may be in flight; a second Send while loading is a
// no-op, which also guarantees responses are processed in issue order.
type Controller struct {
	client    ChatClient
	presenter Presenter
	sessions  Sessions
	logger    *logging.Logger
	metrics   *metrics.WidgetMetrics
	formatter markdown.Formatter
	detector  FollowUpDetector

	schedule        ScheduleFunc
	onFollowUp      func()
	leadPromptDelay time.Duration

	mu           sync.Mutex
	inFlight     bool
	history      History
	cancelPrompt func()
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithFormatter sets the formatter for assistant-authored content.
func WithFormatter(f markdown.Formatter) ControllerOption {
	return func(c *Controller) {
		c.formatter = f
	}
}

// WithMetrics attaches widget metrics.
func WithMetrics(m *metrics.WidgetMetrics) ControllerOption {
	return func(c *Controller) {
		c.metrics = m
	}
}

// WithFollowUp wires the follow-up detector to a deferred prompt.
// onFollowUp runs leadPromptDelay after a matching assistant reply.
func WithFollowUp(detector FollowUpDetector, schedule ScheduleFunc, onFollowUp func()) ControllerOption {
	return func(c *Controller) {
		c.detector = detector
		c.schedule = schedule
		c.onFollowUp = onFollowUp
	}
}

// WithLeadPromptDelay overrides the prompt delay.
func WithLeadPromptDelay(d time.Duration) ControllerOption {
	return func(c *Controller) {
		c.leadPromptDelay = d
	}
}

// NewController creates a conversation controller.
func NewController(client ChatClient, presenter Presenter, sessions Sessions, logger *logging.Logger, opts ...ControllerOption) *Controller {
	if logger == nil {
		logger = logging.Default()
	}
	c := &Controller{
		client:          client,
		presenter:       presenter,
		sessions:        sessions,
		logger:          logger,
		leadPromptDelay: DefaultLeadPromptDelay,
		schedule:        timerSchedule,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send performs one chat exchange. Blank input and concurrent
// submissions are silently ignored. Failures substitute one fixed
// apology turn and are never retried automatically; the authoritative
// history is only replaced on success.
func (c *Controller) Send(ctx context.Context, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}

	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return
	}
	c.inFlight = true
	history := c.history.Clone()
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.inFlight = false
		c.mu.Unlock()
		c.presenter.SetInputEnabled(true)
		c.presenter.FocusInput()
	}()

	c.presenter.SetInputEnabled(false)
	c.presenter.AppendUserMessage(text)
	c.presenter.ShowTyping()

	sessionID := c.sessions.GetOrCreate(ctx)
	result, err := c.client.Chat(ctx, text, history, sessionID)
	c.presenter.HideTyping()

	if err != nil {
		c.metrics.ObserveChat("failure")
		c.logger.Error("conversation: chat request failed", "error", err, "session_id", sessionID)
		c.presenter.AppendAssistantMessage(c.formatter.Render(ApologyMessage))
		return
	}

	c.metrics.ObserveChat("success")
	c.presenter.AppendAssistantMessage(c.formatter.Render(result.Reply))

	c.mu.Lock()
	c.history = result.History.Clone()
	c.mu.Unlock()

	if result.SessionID != "" {
		c.sessions.Adopt(ctx, result.SessionID)
	}

	c.maybeScheduleFollowUp(result.Reply)
}

func (c *Controller) maybeScheduleFollowUp(reply string) {
	if c.detector == nil || c.onFollowUp == nil || !c.detector.Match(reply) {
		return
	}

	c.logger.Debug("conversation: follow-up intent detected")
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancelPrompt != nil {
		c.cancelPrompt()
	}
	c.cancelPrompt = c.schedule(c.leadPromptDelay, c.onFollowUp)
}

// Loading reports whether a chat request is in flight.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// History returns a copy of the authoritative conversation history.
func (c *Controller) History() History {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.Clone()
}

// HistoryLen returns the authoritative history length.
func (c *Controller) HistoryLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.history)
}

// CancelPending cancels any scheduled follow-up prompt. Instance
// teardown uses it to deterministically prevent late firing.
func (c *Controller) CancelPending() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancelPrompt != nil {
		c.cancelPrompt()
		c.cancelPrompt = nil
	}
}

func timerSchedule(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}
