package widget

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakandvine/concierge-widget/internal/config"
	"github.com/oakandvine/concierge-widget/internal/conversation"
	"github.com/oakandvine/concierge-widget/internal/leads"
	"github.com/oakandvine/concierge-widget/pkg/logging"
)

// fakeRenderer records every surface call.
type fakeRenderer struct {
	applied      []config.WidgetConfig
	chatShown    int
	chatHidden   int
	toggleShown  int
	toggleHidden int
	users        []string
	assistants   []string
	typing       int
	typingHidden int
	inputStates  []bool
	focused      int
	popups       []string
	popupHidden  int
	leadShown    int
	leadHidden   int
	alerts       []string
}

func (r *fakeRenderer) ApplyConfig(cfg config.WidgetConfig)    { r.applied = append(r.applied, cfg) }
func (r *fakeRenderer) ShowChat()                              { r.chatShown++ }
func (r *fakeRenderer) HideChat()                              { r.chatHidden++ }
func (r *fakeRenderer) ShowToggle()                            { r.toggleShown++ }
func (r *fakeRenderer) HideToggle()                            { r.toggleHidden++ }
func (r *fakeRenderer) AppendUserMessage(text string)          { r.users = append(r.users, text) }
func (r *fakeRenderer) AppendAssistantMessage(markup string)   { r.assistants = append(r.assistants, markup) }
func (r *fakeRenderer) ShowTyping()                            { r.typing++ }
func (r *fakeRenderer) HideTyping()                            { r.typingHidden++ }
func (r *fakeRenderer) SetInputEnabled(enabled bool)           { r.inputStates = append(r.inputStates, enabled) }
func (r *fakeRenderer) FocusInput()                            { r.focused++ }
func (r *fakeRenderer) ShowPopup(message string)               { r.popups = append(r.popups, message) }
func (r *fakeRenderer) HidePopup()                             { r.popupHidden++ }
func (r *fakeRenderer) ShowLeadForm()                          { r.leadShown++ }
func (r *fakeRenderer) HideLeadForm()                          { r.leadHidden++ }
func (r *fakeRenderer) Alert(message string)                   { r.alerts = append(r.alerts, message) }

// fakeBackend scripts the tenant API.
type fakeBackend struct {
	chatResults []*conversation.ChatResult
	chatErr     error
	chatCalls   int
	remote      *config.Remote
	remoteErr   error
	leadErr     error
	leads       []leads.Submission
}

func (b *fakeBackend) Chat(_ context.Context, message string, history conversation.History, sessionID string) (*conversation.ChatResult, error) {
	b.chatCalls++
	if b.chatErr != nil {
		return nil, b.chatErr
	}
	res := b.chatResults[0]
	if len(b.chatResults) > 1 {
		b.chatResults = b.chatResults[1:]
	}
	return res, nil
}

func (b *fakeBackend) FetchWidgetConfig(context.Context) (*config.Remote, error) {
	if b.remoteErr != nil {
		return nil, b.remoteErr
	}
	if b.remote == nil {
		return &config.Remote{}, nil
	}
	return b.remote, nil
}

func (b *fakeBackend) SubmitLead(_ context.Context, sub leads.Submission) error {
	if b.leadErr != nil {
		return b.leadErr
	}
	b.leads = append(b.leads, sub)
	return nil
}

// manualScheduler captures scheduled callbacks for deterministic firing.
type manualScheduler struct {
	tasks []*manualTask
}

type manualTask struct {
	delay     time.Duration
	fn        func()
	cancelled bool
}

func (s *manualScheduler) After(d time.Duration, fn func()) func() {
	t := &manualTask{delay: d, fn: fn}
	s.tasks = append(s.tasks, t)
	return func() { t.cancelled = true }
}

func (s *manualScheduler) fire(i int) {
	if t := s.tasks[i]; !t.cancelled {
		t.fn()
	}
}

func testSettings() *config.Settings {
	return &config.Settings{
		APIBase:         "http://localhost:8080",
		APIKey:          "nc_test_key",
		LogLevel:        "error",
		PopupDelay:      10 * time.Second,
		LeadPromptDelay: time.Second,
	}
}

func newTestWidget(t *testing.T, be *fakeBackend) (*Widget, *fakeRenderer, *manualScheduler) {
	t.Helper()
	r := &fakeRenderer{}
	sched := &manualScheduler{}
	w, err := New(testSettings(), be, r,
		WithLogger(logging.Discard()),
		WithScheduler(sched),
	)
	require.NoError(t, err)
	return w, r, sched
}

func TestNewRequiresAPIKey(t *testing.T) {
	settings := testSettings()
	settings.APIKey = ""
	r := &fakeRenderer{}

	w, err := New(settings, &fakeBackend{}, r, WithLogger(logging.Discard()))
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	assert.Nil(t, w)
	assert.Zero(t, r.toggleShown, "nothing renders without a credential")
}

func TestInitAppliesRemoteBranding(t *testing.T) {
	be := &fakeBackend{remote: &config.Remote{BusinessName: "The Vineyard Inn", WidgetTitle: "Vineyard Concierge"}}
	w, r, sched := newTestWidget(t, be)

	w.Init(context.Background())

	require.Len(t, r.applied, 1)
	assert.Equal(t, "The Vineyard Inn", r.applied[0].BusinessName)
	assert.Equal(t, "Vineyard Concierge", r.applied[0].WidgetTitle)
	assert.Equal(t, "#722F37", r.applied[0].PrimaryColor, "unset remote fields keep defaults")
	assert.Equal(t, 1, r.toggleShown)
	require.Len(t, sched.tasks, 1, "popup timer armed once at initialization")
	assert.Equal(t, 10*time.Second, sched.tasks[0].delay)
}

func TestInitSurvivesConfigFetchFailure(t *testing.T) {
	be := &fakeBackend{remoteErr: errors.New("branding service down")}
	w, r, _ := newTestWidget(t, be)

	w.Init(context.Background())

	require.Len(t, r.applied, 1)
	assert.Equal(t, config.Default(), r.applied[0])
	assert.Empty(t, r.alerts, "config failure never surfaces to the visitor")
	assert.Equal(t, 1, r.toggleShown, "widget stays available")
}

func TestWelcomeMessageExactlyOnce(t *testing.T) {
	be := &fakeBackend{}
	w, r, _ := newTestWidget(t, be)
	w.Init(context.Background())

	w.Open()
	require.Len(t, r.assistants, 1, "welcome appended on first open with empty history")
	assert.Contains(t, r.assistants[0], "wine country")
	assert.Zero(t, be.chatCalls, "welcome is local, never sent to the backend")
	assert.Zero(t, w.History(), "welcome does not enter the authoritative history")

	w.Close()
	w.Open()
	assert.Len(t, r.assistants, 1, "reopening never re-appends the welcome")
}

func TestOpenCloseStateMachine(t *testing.T) {
	w, r, _ := newTestWidget(t, &fakeBackend{})
	w.Init(context.Background())

	w.Open()
	assert.True(t, w.IsOpen())
	assert.Equal(t, 1, r.chatShown)
	assert.Equal(t, 1, r.toggleHidden)
	assert.Equal(t, 1, r.focused)

	// Opening again is a no-op.
	w.Open()
	assert.Equal(t, 1, r.chatShown)

	w.Close()
	assert.False(t, w.IsOpen())
	assert.Equal(t, 1, r.chatHidden)
	assert.Equal(t, 2, r.toggleShown) // init + close

	// Closing again is a no-op.
	w.Close()
	assert.Equal(t, 1, r.chatHidden)
}

func TestProactivePopup(t *testing.T) {
	t.Run("fires once while chat is closed", func(t *testing.T) {
		be := &fakeBackend{remote: &config.Remote{BusinessName: "The Vineyard Inn"}}
		w, r, sched := newTestWidget(t, be)
		w.Init(context.Background())

		sched.fire(0)
		require.Len(t, r.popups, 1)
		assert.Contains(t, r.popups[0], "The Vineyard Inn")
		assert.True(t, w.PopupShown())
	})

	t.Run("suppressed when chat already open", func(t *testing.T) {
		w, r, sched := newTestWidget(t, &fakeBackend{})
		w.Init(context.Background())

		w.Open()
		sched.fire(0)
		assert.Empty(t, r.popups)
		assert.False(t, w.PopupShown())
	})

	t.Run("clicking the popup opens the chat", func(t *testing.T) {
		w, r, sched := newTestWidget(t, &fakeBackend{})
		w.Init(context.Background())

		sched.fire(0)
		w.OpenFromPopup()
		assert.True(t, w.IsOpen())
		assert.GreaterOrEqual(t, r.popupHidden, 1)
		assert.Equal(t, 1, r.chatShown)
	})

	t.Run("dismiss leaves the chat closed and the popup gone for good", func(t *testing.T) {
		w, r, sched := newTestWidget(t, &fakeBackend{})
		w.Init(context.Background())

		sched.fire(0)
		w.DismissPopup()
		assert.False(t, w.IsOpen())
		assert.Equal(t, 1, r.popupHidden)
		assert.True(t, w.PopupShown())
	})

	t.Run("shutdown cancels the armed timer", func(t *testing.T) {
		w, r, sched := newTestWidget(t, &fakeBackend{})
		w.Init(context.Background())

		w.Shutdown()
		sched.fire(0)
		assert.Empty(t, r.popups, "cancelled timer must not fire")
	})
}

func TestSendFlowThroughWidget(t *testing.T) {
	serverHistory := conversation.History{
		{Role: conversation.RoleUser, Content: "tastings?"},
		{Role: conversation.RoleAssistant, Content: "## Book a Tasting\nWe'd love to host you."},
	}
	be := &fakeBackend{chatResults: []*conversation.ChatResult{{
		Reply:   "## Book a Tasting\nWe'd love to host you.",
		History: serverHistory,
	}}}
	w, r, sched := newTestWidget(t, be)
	w.Init(context.Background())
	w.Open()

	w.Send(context.Background(), "tastings?")

	assert.Equal(t, []string{"tastings?"}, r.users)
	// welcome + formatted reply
	require.Len(t, r.assistants, 2)
	assert.Equal(t, "<br><strong>Book a Tasting</strong><br><br>We'd love to host you.", r.assistants[1])
	assert.Equal(t, serverHistory, w.History())

	// No follow-up trigger phrase, so no lead prompt was scheduled
	// beyond the popup timer from Init.
	assert.Len(t, sched.tasks, 1)
	assert.False(t, w.LeadFormVisible())
}

func TestFollowUpRevealsLeadFormAfterDelay(t *testing.T) {
	be := &fakeBackend{chatResults: []*conversation.ChatResult{{
		Reply:   "Leave your contact info and we'll reach out with availability.",
		History: conversation.History{{Role: conversation.RoleAssistant, Content: "..."}},
	}}}
	w, r, sched := newTestWidget(t, be)
	w.Init(context.Background())
	w.Open()

	w.Send(context.Background(), "can someone help me book?")

	require.Len(t, sched.tasks, 2, "lead prompt deferred on a scheduled callback")
	assert.Equal(t, time.Second, sched.tasks[1].delay)
	assert.False(t, w.LeadFormVisible(), "prompt must not interrupt the reply reveal")

	sched.fire(1)
	assert.True(t, w.LeadFormVisible())
	assert.Equal(t, 1, r.leadShown)
}

func TestSubmitLead(t *testing.T) {
	t.Run("success hides the form and confirms", func(t *testing.T) {
		be := &fakeBackend{}
		w, r, _ := newTestWidget(t, be)
		w.Init(context.Background())
		w.RequestLeadForm()

		err := w.SubmitLead(context.Background(), leads.Record{Name: "Ada", Phone: "+17075551234"})
		require.NoError(t, err)

		require.Len(t, be.leads, 1)
		assert.Equal(t, "Ada", be.leads[0].Name)
		assert.NotEmpty(t, be.leads[0].SessionID)
		assert.Equal(t, leads.DefaultInterest, be.leads[0].Interest)
		assert.False(t, w.LeadFormVisible())
		assert.Equal(t, 1, r.leadHidden)
	})

	t.Run("validation failure keeps the form", func(t *testing.T) {
		be := &fakeBackend{}
		w, r, _ := newTestWidget(t, be)
		w.Init(context.Background())
		w.RequestLeadForm()

		err := w.SubmitLead(context.Background(), leads.Record{Name: "Ada"})
		require.Error(t, err)
		assert.ErrorIs(t, err, leads.ErrMissingContact)
		assert.Empty(t, be.leads, "no request on validation failure")
		assert.True(t, w.LeadFormVisible())
		assert.Len(t, r.alerts, 1)
	})

	t.Run("backend failure keeps the form for retry", func(t *testing.T) {
		be := &fakeBackend{leadErr: errors.New("503")}
		w, r, _ := newTestWidget(t, be)
		w.Init(context.Background())
		w.RequestLeadForm()

		err := w.SubmitLead(context.Background(), leads.Record{Email: "ada@example.com"})
		require.Error(t, err)
		assert.True(t, w.LeadFormVisible())
		assert.Len(t, r.alerts, 1)
	})

	t.Run("cancel discards without submitting", func(t *testing.T) {
		be := &fakeBackend{}
		w, r, _ := newTestWidget(t, be)
		w.Init(context.Background())
		w.RequestLeadForm()

		w.CancelLead()
		assert.False(t, w.LeadFormVisible())
		assert.Equal(t, 1, r.leadHidden)
		assert.Empty(t, be.leads)
	})
}

func TestChatFailureLeavesWidgetUsable(t *testing.T) {
	be := &fakeBackend{chatErr: errors.New("network error")}
	w, r, _ := newTestWidget(t, be)
	w.Init(context.Background())
	w.Open()

	w.Send(context.Background(), "hello?")

	// Optimistic echo, welcome, and exactly one apology turn.
	assert.Equal(t, []string{"hello?"}, r.users)
	require.Len(t, r.assistants, 2)
	assert.Contains(t, r.assistants[1], "having trouble connecting")
	assert.Zero(t, len(w.History()), "authoritative history unchanged")
	assert.False(t, w.Loading())

	// Send control restored; a manual resubmission reaches the backend.
	assert.Equal(t, true, r.inputStates[len(r.inputStates)-1])
	w.Send(context.Background(), "hello again")
	assert.Equal(t, 2, be.chatCalls)
}

func TestMultipleIndependentInstances(t *testing.T) {
	be1 := &fakeBackend{}
	be2 := &fakeBackend{}
	w1, _, _ := newTestWidget(t, be1)
	w2, _, _ := newTestWidget(t, be2)
	w1.Init(context.Background())
	w2.Init(context.Background())

	w1.Open()
	assert.True(t, w1.IsOpen())
	assert.False(t, w2.IsOpen(), "instances share no state")
}
