package leads

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakandvine/concierge-widget/pkg/logging"
)

// mockSubmitter records submissions.
type mockSubmitter struct {
	subs []Submission
	err  error
}

func (m *mockSubmitter) SubmitLead(_ context.Context, sub Submission) error {
	if m.err != nil {
		return m.err
	}
	m.subs = append(m.subs, sub)
	return nil
}

// mockPresenter records surface calls.
type mockPresenter struct {
	hidden    bool
	messages  []string
	alerts    []string
}

func (m *mockPresenter) HideLeadForm()                        { m.hidden = true }
func (m *mockPresenter) AppendAssistantMessage(markup string) { m.messages = append(m.messages, markup) }
func (m *mockPresenter) Alert(message string)                 { m.alerts = append(m.alerts, message) }

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		rec     Record
		wantErr error
	}{
		{"no contact method", Record{Name: "Ada"}, ErrMissingContact},
		{"whitespace only", Record{Email: "  ", Phone: "\t"}, ErrMissingContact},
		{"email only", Record{Email: "ada@example.com"}, nil},
		{"phone only", Record{Phone: "+17075551234"}, nil},
		{"both", Record{Email: "ada@example.com", Phone: "+17075551234"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rec.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSubmitRejectsLocallyWithoutContact(t *testing.T) {
	sub := &mockSubmitter{}
	pres := &mockPresenter{}
	c := NewController(sub, pres, logging.Discard())

	err := c.Submit(context.Background(), "sess1", Record{Name: "Ada"})

	assert.ErrorIs(t, err, ErrMissingContact)
	assert.Empty(t, sub.subs, "no request may be issued on validation failure")
	assert.Len(t, pres.alerts, 1)
	assert.False(t, pres.hidden, "form stays open")
}

func TestSubmitSuccess(t *testing.T) {
	sub := &mockSubmitter{}
	pres := &mockPresenter{}
	c := NewController(sub, pres, logging.Discard())

	err := c.Submit(context.Background(), "sess1", Record{Name: "Ada", Phone: "+17075551234"})
	require.NoError(t, err)

	require.Len(t, sub.subs, 1)
	assert.Equal(t, Submission{
		SessionID: "sess1",
		Name:      "Ada",
		Phone:     "+17075551234",
		Interest:  DefaultInterest,
	}, sub.subs[0])

	assert.True(t, pres.hidden, "form hides on success")
	require.Len(t, pres.messages, 1)
	assert.Contains(t, pres.messages[0], "Thank you!")
	assert.Empty(t, pres.alerts)
}

func TestSubmitFailureKeepsFormOpen(t *testing.T) {
	sub := &mockSubmitter{err: errors.New("503")}
	pres := &mockPresenter{}
	c := NewController(sub, pres, logging.Discard())

	err := c.Submit(context.Background(), "sess1", Record{Email: "ada@example.com"})

	assert.ErrorIs(t, err, ErrSubmitFailed)
	assert.Len(t, pres.alerts, 1)
	assert.False(t, pres.hidden, "form preserved for retry")
	assert.Empty(t, pres.messages)
}

func TestSubmitCustomInterest(t *testing.T) {
	sub := &mockSubmitter{}
	pres := &mockPresenter{}
	c := NewController(sub, pres, logging.Discard(), WithInterest("Private tastings"))

	require.NoError(t, c.Submit(context.Background(), "sess1", Record{Email: "ada@example.com"}))
	require.Len(t, sub.subs, 1)
	assert.Equal(t, "Private tastings", sub.subs[0].Interest)
}

func TestCancel(t *testing.T) {
	pres := &mockPresenter{}
	c := NewController(&mockSubmitter{}, pres, logging.Discard())

	c.Cancel()
	assert.True(t, pres.hidden)
	assert.Empty(t, pres.alerts)
	assert.Empty(t, pres.messages)
}
