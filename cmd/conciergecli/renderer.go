package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/oakandvine/concierge-widget/internal/config"
)

// markupToText flattens the widget's inline markup for a terminal.
var markupToText = strings.NewReplacer(
	"<br>", "\n",
	"<strong>", "",
	"</strong>", "",
	"&bull;", "•",
)

// consoleRenderer is a minimal rendering surface for the demo CLI.
type consoleRenderer struct {
	out io.Writer
}

func newConsoleRenderer(out io.Writer) *consoleRenderer {
	return &consoleRenderer{out: out}
}

func (r *consoleRenderer) ApplyConfig(cfg config.WidgetConfig) {
	fmt.Fprintf(r.out, "=== %s | %s ===\n", cfg.WidgetTitle, cfg.WidgetSubtitle)
}

func (r *consoleRenderer) ShowChat()   { fmt.Fprintln(r.out, "[chat open]") }
func (r *consoleRenderer) HideChat()   { fmt.Fprintln(r.out, "[chat closed]") }
func (r *consoleRenderer) ShowToggle() {}
func (r *consoleRenderer) HideToggle() {}

func (r *consoleRenderer) AppendUserMessage(text string) {
	fmt.Fprintf(r.out, "you> %s\n", text)
}

func (r *consoleRenderer) AppendAssistantMessage(markup string) {
	fmt.Fprintf(r.out, "concierge> %s\n", markupToText.Replace(markup))
}

func (r *consoleRenderer) ShowTyping()          { fmt.Fprintln(r.out, "concierge is typing...") }
func (r *consoleRenderer) HideTyping()          {}
func (r *consoleRenderer) SetInputEnabled(bool) {}
func (r *consoleRenderer) FocusInput()          {}

func (r *consoleRenderer) ShowPopup(message string) {
	fmt.Fprintf(r.out, "[popup] %s (type /open to chat)\n", message)
}

func (r *consoleRenderer) HidePopup() {}

func (r *consoleRenderer) ShowLeadForm() {
	fmt.Fprintln(r.out, "[lead form] share contact details with /lead name;email;phone (or /cancel)")
}

func (r *consoleRenderer) HideLeadForm() { fmt.Fprintln(r.out, "[lead form closed]") }

func (r *consoleRenderer) Alert(message string) {
	fmt.Fprintf(r.out, "[alert] %s\n", message)
}
