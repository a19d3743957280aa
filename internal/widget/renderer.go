package widget

import "github.com/oakandvine/concierge-widget/internal/config"

// Renderer is the injected rendering capability. Browser hosts back it
// with DOM primitives; tests and console hosts bring their own. The
// engine only ever passes literal text to AppendUserMessage and
// pre-formatted markup to AppendAssistantMessage; renderers must not
// interpret user text as markup.
type Renderer interface {
	// ApplyConfig refreshes branding-dependent surfaces (title,
	// subtitle, accent color).
	ApplyConfig(cfg config.WidgetConfig)

	ShowChat()
	HideChat()
	ShowToggle()
	HideToggle()

	AppendUserMessage(text string)
	AppendAssistantMessage(markup string)
	ShowTyping()
	HideTyping()
	SetInputEnabled(enabled bool)
	FocusInput()

	ShowPopup(message string)
	HidePopup()

	ShowLeadForm()
	HideLeadForm()
	Alert(message string)
}
