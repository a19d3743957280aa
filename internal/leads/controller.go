package leads

import (
	"context"
	"fmt"

	"github.com/oakandvine/concierge-widget/internal/markdown"
	"github.com/oakandvine/concierge-widget/internal/observability/metrics"
	"github.com/oakandvine/concierge-widget/pkg/logging"
)

// DefaultInterest is the fixed label attached to every submission.
const DefaultInterest = "Wine country visit"

// Messages surfaced to the visitor around lead capture.
const (
	validationAlert     = "Please provide an email address or phone number so we can reach you."
	submitFailedAlert   = "Sorry, we couldn't send your details just now. Please try again."
	confirmationMessage = "Thank you! We've passed your details along and someone will be in touch shortly. Feel free to keep asking questions in the meantime."
)

// Submitter delivers a lead to the tenant API.
type Submitter interface {
	SubmitLead(ctx context.Context, sub Submission) error
}

// Presenter is the slice of the rendering surface lead capture needs.
type Presenter interface {
	HideLeadForm()
	AppendAssistantMessage(markup string)
	Alert(message string)
}

// Controller collects and submits visitor contact info. Submission is
// fire-and-forget from the conversation's point of view; failures keep
// the form open and populated for a manual retry.
type Controller struct {
	submitter Submitter
	presenter Presenter
	logger    *logging.Logger
	metrics   *metrics.WidgetMetrics
	interest  string
	formatter markdown.Formatter
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithInterest overrides the fixed interest label.
func WithInterest(interest string) ControllerOption {
	return func(c *Controller) {
		c.interest = interest
	}
}

// WithMetrics attaches widget metrics.
func WithMetrics(m *metrics.WidgetMetrics) ControllerOption {
	return func(c *Controller) {
		c.metrics = m
	}
}

// WithFormatter sets the formatter used for the confirmation turn.
func WithFormatter(f markdown.Formatter) ControllerOption {
	return func(c *Controller) {
		c.formatter = f
	}
}

// NewController creates a lead capture controller.
func NewController(submitter Submitter, presenter Presenter, logger *logging.Logger, opts ...ControllerOption) *Controller {
	if logger == nil {
		logger = logging.Default()
	}
	c := &Controller{
		submitter: submitter,
		presenter: presenter,
		logger:    logger,
		interest:  DefaultInterest,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit validates and delivers the record. Validation failure alerts
// the visitor and issues no request; delivery failure alerts and
// leaves the form open. Success hides the form and confirms with one
// fixed local assistant turn.
func (c *Controller) Submit(ctx context.Context, sessionID string, rec Record) error {
	if err := rec.Validate(); err != nil {
		c.metrics.ObserveLead("rejected")
		c.presenter.Alert(validationAlert)
		return err
	}

	sub := Submission{
		SessionID: sessionID,
		Name:      rec.Name,
		Email:     rec.Email,
		Phone:     rec.Phone,
		Interest:  c.interest,
	}
	if err := c.submitter.SubmitLead(ctx, sub); err != nil {
		c.metrics.ObserveLead("failure")
		c.logger.Error("leads: submission failed", "error", err, "session_id", sessionID)
		c.presenter.Alert(submitFailedAlert)
		return fmt.Errorf("%w: %v", ErrSubmitFailed, err)
	}

	c.metrics.ObserveLead("success")
	c.logger.Info("leads: submitted", "session_id", sessionID, "has_email", rec.Email != "", "has_phone", rec.Phone != "")
	c.presenter.HideLeadForm()
	c.presenter.AppendAssistantMessage(c.formatter.Render(confirmationMessage))
	return nil
}

// Cancel hides the form without submitting, discarding entered values.
func (c *Controller) Cancel() {
	c.presenter.HideLeadForm()
}
