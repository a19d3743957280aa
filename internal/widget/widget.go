// Package widget is the engine behind the embeddable concierge chat
// widget: the open/closed state machine, one-time lifecycle triggers
// (welcome message, proactive popup, lead prompt), and the wiring
// between rendering surface, conversation controller, and lead
// capture. One Widget instance owns all mutable state; nothing lives
// in package scope, so a page can hold several independent instances.
package widget

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oakandvine/concierge-widget/internal/config"
	"github.com/oakandvine/concierge-widget/internal/conversation"
	"github.com/oakandvine/concierge-widget/internal/leads"
	"github.com/oakandvine/concierge-widget/internal/markdown"
	"github.com/oakandvine/concierge-widget/internal/observability/metrics"
	"github.com/oakandvine/concierge-widget/internal/session"
	"github.com/oakandvine/concierge-widget/pkg/logging"
)

// ErrMissingAPIKey aborts startup when the embed surface carries no
// tenant credential. The widget does not render at all.
var ErrMissingAPIKey = errors.New("widget: missing api key credential")

// Backend is everything the engine needs from the tenant API.
type Backend interface {
	conversation.ChatClient
	config.Fetcher
	leads.Submitter
}

// Widget is one widget instance.
type Widget struct {
	settings  *config.Settings
	renderer  Renderer
	scheduler Scheduler
	logger    *logging.Logger
	metrics   *metrics.WidgetMetrics
	formatter markdown.Formatter

	sessions *session.Store
	loader   *config.Loader
	conv     *conversation.Controller
	leadCtrl *leads.Controller

	mu              sync.Mutex
	cfg             config.WidgetConfig
	open            bool
	welcomed        bool
	popupShown      bool
	leadFormVisible bool
	cancelPopup     func()
}

// Option configures a Widget.
type Option func(*options)

type options struct {
	logger    *logging.Logger
	scheduler Scheduler
	metrics   *metrics.WidgetMetrics
	storage   session.Storage
	detector  conversation.FollowUpDetector
	formatter *markdown.Formatter
}

// WithLogger sets a custom logger.
func WithLogger(logger *logging.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithScheduler replaces the timer-backed scheduler.
func WithScheduler(s Scheduler) Option {
	return func(o *options) { o.scheduler = s }
}

// WithMetrics attaches widget metrics.
func WithMetrics(m *metrics.WidgetMetrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithSessionStorage replaces the in-memory session storage.
func WithSessionStorage(s session.Storage) Option {
	return func(o *options) { o.storage = s }
}

// WithFollowUpDetector swaps the follow-up matching strategy.
func WithFollowUpDetector(d conversation.FollowUpDetector) Option {
	return func(o *options) { o.detector = d }
}

// WithFormatter overrides the assistant-content formatter.
func WithFormatter(f markdown.Formatter) Option {
	return func(o *options) { o.formatter = &f }
}

// New assembles a widget instance. It fails when the tenant credential
// is missing; nothing is rendered in that case.
func New(settings *config.Settings, be Backend, renderer Renderer, opts ...Option) (*Widget, error) {
	if settings == nil {
		settings = config.Load()
	}

	o := &options{
		logger:    logging.New(settings.LogLevel),
		scheduler: TimerScheduler{},
		storage:   session.NewMemoryStorage(),
		detector:  conversation.NewPhraseDetector(),
	}
	for _, opt := range opts {
		opt(o)
	}

	if settings.APIKey == "" {
		o.logger.Error("widget: no api key configured, refusing to initialize")
		return nil, ErrMissingAPIKey
	}

	w := &Widget{
		settings:  settings,
		renderer:  renderer,
		scheduler: o.scheduler,
		logger:    o.logger,
		metrics:   o.metrics,
		formatter: markdown.Formatter{AllowLinks: true},
		cfg:       config.Default(),
	}
	if o.formatter != nil {
		w.formatter = *o.formatter
	}

	w.sessions = session.NewStore(o.storage, session.WithLogger(o.logger))
	w.loader = config.NewLoader(be, o.logger)
	w.conv = conversation.NewController(be, renderer, w.sessions, o.logger,
		conversation.WithFormatter(w.formatter),
		conversation.WithMetrics(o.metrics),
		conversation.WithFollowUp(o.detector, w.scheduler.After, w.showLeadPrompt),
		conversation.WithLeadPromptDelay(settings.LeadPromptDelay),
	)
	w.leadCtrl = leads.NewController(be, renderer, o.logger,
		leads.WithMetrics(o.metrics),
		leads.WithFormatter(w.formatter),
	)

	return w, nil
}

// Init consults the session store, loads tenant branding (falling back
// to defaults silently), renders the closed surface, and arms the
// one-shot proactive popup timer. It must complete before conversation
// starts.
func (w *Widget) Init(ctx context.Context) {
	sessionID := w.sessions.GetOrCreate(ctx)

	cfg, loaded := w.loader.Load(ctx)
	w.mu.Lock()
	w.cfg = cfg
	w.mu.Unlock()

	w.renderer.ApplyConfig(cfg)
	w.renderer.ShowToggle()

	cancel := w.scheduler.After(w.settings.PopupDelay, w.firePopup)
	w.mu.Lock()
	w.cancelPopup = cancel
	w.mu.Unlock()

	w.logger.Info("widget: initialized",
		"session_id", sessionID,
		"branding_loaded", loaded,
		"business", cfg.BusinessName,
	)
}

// Open reveals the chat surface. On the first open with an empty
// history it appends the welcome message as a local assistant turn;
// the welcome never reaches the backend and never repeats.
func (w *Widget) Open() {
	w.mu.Lock()
	if w.open {
		w.mu.Unlock()
		return
	}
	w.open = true
	showWelcome := !w.welcomed && w.conv.HistoryLen() == 0
	if showWelcome {
		w.welcomed = true
	}
	cfg := w.cfg
	w.mu.Unlock()

	w.metrics.ObserveOpen()
	w.renderer.HidePopup()
	w.renderer.HideToggle()
	w.renderer.ShowChat()
	if showWelcome {
		w.renderer.AppendAssistantMessage(w.formatter.Render(cfg.WelcomeMessage))
	}
	w.renderer.FocusInput()
}

// Close hides the chat surface and restores the toggle. History is
// preserved for the rest of the page lifetime.
func (w *Widget) Close() {
	w.mu.Lock()
	if !w.open {
		w.mu.Unlock()
		return
	}
	w.open = false
	w.mu.Unlock()

	w.renderer.HideChat()
	w.renderer.ShowToggle()
}

// Send submits visitor input. Both the send control and the Enter key
// converge here; blank input and in-flight requests are no-ops.
func (w *Widget) Send(ctx context.Context, text string) {
	w.conv.Send(ctx, text)
}

// OpenFromPopup handles a click on the proactive popup: dismisses it
// and opens the chat, equivalent to pressing the toggle.
func (w *Widget) OpenFromPopup() {
	w.renderer.HidePopup()
	w.Open()
}

// DismissPopup hides the popup without opening the chat. The shown
// flag stays set; the popup never returns this page lifetime.
func (w *Widget) DismissPopup() {
	w.renderer.HidePopup()
}

// RequestLeadForm reveals the lead capture form.
func (w *Widget) RequestLeadForm() {
	w.showLeadPrompt()
}

// SubmitLead validates and submits the visitor's contact info. The
// record is not retained after a successful submission.
func (w *Widget) SubmitLead(ctx context.Context, rec leads.Record) error {
	sessionID := w.sessions.GetOrCreate(ctx)
	if err := w.leadCtrl.Submit(ctx, sessionID, rec); err != nil {
		return fmt.Errorf("widget: %w", err)
	}

	w.mu.Lock()
	w.leadFormVisible = false
	w.mu.Unlock()
	return nil
}

// CancelLead hides the lead form, discarding entered values.
func (w *Widget) CancelLead() {
	w.mu.Lock()
	w.leadFormVisible = false
	w.mu.Unlock()
	w.leadCtrl.Cancel()
}

// Shutdown cancels outstanding scheduled callbacks. Tests and SPA
// teardown use it to prevent late timer firing; it does not touch the
// rendered surface.
func (w *Widget) Shutdown() {
	w.mu.Lock()
	cancel := w.cancelPopup
	w.cancelPopup = nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	w.conv.CancelPending()
}

// firePopup runs when the popup timer elapses. Showing is suppressed
// when the chat is already open or the popup was already shown; the
// shown flag is monotonic.
func (w *Widget) firePopup() {
	w.mu.Lock()
	if w.popupShown || w.open {
		w.mu.Unlock()
		return
	}
	w.popupShown = true
	cfg := w.cfg
	w.mu.Unlock()

	w.metrics.ObservePopup()
	w.renderer.ShowPopup(popupMessage(cfg))
	w.logger.Debug("widget: proactive popup shown")
}

func (w *Widget) showLeadPrompt() {
	w.mu.Lock()
	if w.leadFormVisible {
		w.mu.Unlock()
		return
	}
	w.leadFormVisible = true
	w.mu.Unlock()

	w.renderer.ShowLeadForm()
}

func popupMessage(cfg config.WidgetConfig) string {
	return fmt.Sprintf("Planning a visit? Chat with %s's concierge.", cfg.BusinessName)
}

// IsOpen reports whether the chat surface is open.
func (w *Widget) IsOpen() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.open
}

// PopupShown reports whether the proactive popup has fired.
func (w *Widget) PopupShown() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.popupShown
}

// LeadFormVisible reports whether the lead form is showing.
func (w *Widget) LeadFormVisible() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.leadFormVisible
}

// Config returns the effective widget config.
func (w *Widget) Config() config.WidgetConfig {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cfg
}

// History returns a copy of the authoritative conversation history.
func (w *Widget) History() conversation.History {
	return w.conv.History()
}

// Loading reports whether a chat request is in flight.
func (w *Widget) Loading() bool {
	return w.conv.Loading()
}

// PopupDelay is exposed for hosts that surface countdown hints.
func (w *Widget) PopupDelay() time.Duration {
	return w.settings.PopupDelay
}
