// Package conversation owns the widget's conversation state: the
// ordered turn history, the single-flight chat exchange with the
// tenant API, and the follow-up intent trigger for lead capture.
package conversation

import "context"

// Turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one message in a conversation, tagged with its author role.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// History is the chronological turn sequence. The server-returned
// history is authoritative: the client replaces its copy verbatim and
// never reorders or merges.
type History []Turn

// Clone returns an independent copy of the history.
func (h History) Clone() History {
	if h == nil {
		return nil
	}
	out := make(History, len(h))
	copy(out, h)
	return out
}

// ChatResult is the outcome of one successful chat exchange.
type ChatResult struct {
	Reply     string
	History   History
	SessionID string
}

// ChatClient performs the chat exchange with the tenant API.
type ChatClient interface {
	Chat(ctx context.Context, message string, history History, sessionID string) (*ChatResult, error)
}

// Sessions supplies and adopts session identifiers.
type Sessions interface {
	GetOrCreate(ctx context.Context) string
	Adopt(ctx context.Context, id string)
}

// Presenter is the slice of the rendering surface the conversation
// controller drives.
type Presenter interface {
	AppendUserMessage(text string)
	AppendAssistantMessage(markup string)
	ShowTyping()
	HideTyping()
	SetInputEnabled(enabled bool)
	FocusInput()
}
