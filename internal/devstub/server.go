// Package devstub is a canned-response stand-in for the tenant
// concierge API, used to develop and demo the widget locally. It
// implements the same wire contract (chat, widget-config, leads) with
// scripted replies; it is not the production backend.
package devstub

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/oakandvine/concierge-widget/internal/config"
	"github.com/oakandvine/concierge-widget/internal/conversation"
	"github.com/oakandvine/concierge-widget/internal/leads"
	"github.com/oakandvine/concierge-widget/pkg/logging"
)

// Server holds the stub's canned branding and captured leads.
type Server struct {
	apiKey  string
	remote  config.Remote
	logger  *logging.Logger
	origins []string

	mu    sync.Mutex
	leads []leads.Submission
}

// ServerOption configures the stub.
type ServerOption func(*Server)

// WithBranding sets the widget-config payload served to the widget.
func WithBranding(remote config.Remote) ServerOption {
	return func(s *Server) {
		s.remote = remote
	}
}

// WithAllowedOrigins restricts CORS origins (default any).
func WithAllowedOrigins(origins []string) ServerOption {
	return func(s *Server) {
		s.origins = origins
	}
}

// New creates a stub server. apiKey is the only credential it accepts.
func New(apiKey string, logger *logging.Logger, opts ...ServerOption) *Server {
	if logger == nil {
		logger = logging.Default()
	}
	s := &Server{
		apiKey: apiKey,
		logger: logger,
		remote: config.Remote{
			BusinessName:   "The Vineyard Inn",
			PrimaryColor:   "#722F37",
			WidgetTitle:    "Vineyard Concierge",
			WidgetSubtitle: "Your personal wine country guide",
		},
		origins: []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes builds the stub's HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors(s.origins))

	r.Get("/health", s.handleHealth)
	r.Post("/api/chat", s.handleChat)
	r.Get("/api/widget-config", s.handleWidgetConfig)
	r.Post("/api/leads", s.handleLeads)

	return r
}

// Leads returns the submissions captured so far.
func (s *Server) Leads() []leads.Submission {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]leads.Submission, len(s.leads))
	copy(out, s.leads)
	return out
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}

type chatRequest struct {
	Message             string               `json:"message"`
	ConversationHistory conversation.History `json:"conversation_history"`
	SessionID           string               `json:"session_id"`
}

type chatResponse struct {
	Response            string               `json:"response"`
	ConversationHistory conversation.History `json:"conversation_history"`
	SessionID           string               `json:"session_id"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		http.Error(w, "invalid api key", http.StatusUnauthorized)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		req.SessionID = newStubSessionID()
	}

	reply := scriptedReply(req.Message)
	history := append(req.ConversationHistory.Clone(),
		conversation.Turn{Role: conversation.RoleUser, Content: req.Message},
		conversation.Turn{Role: conversation.RoleAssistant, Content: reply},
	)

	s.logger.Debug("devstub: chat exchange", "session_id", req.SessionID, "history_len", len(history))

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(chatResponse{
		Response:            reply,
		ConversationHistory: history,
		SessionID:           req.SessionID,
	})
}

func (s *Server) handleWidgetConfig(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("api_key") != s.apiKey {
		http.Error(w, "invalid api key", http.StatusUnauthorized)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.remote)
}

func (s *Server) handleLeads(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		http.Error(w, "invalid api key", http.StatusUnauthorized)
		return
	}

	var sub leads.Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if sub.Email == "" && sub.Phone == "" {
		http.Error(w, "either email or phone is required", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.leads = append(s.leads, sub)
	s.mu.Unlock()

	s.logger.Info("devstub: lead captured", "session_id", sub.SessionID, "name", sub.Name)
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) authorized(r *http.Request) bool {
	return r.Header.Get("X-API-Key") == s.apiKey
}

// scriptedReply picks a canned concierge answer. Messages about
// booking steer toward the follow-up phrasing so the lead flow can be
// exercised locally.
func scriptedReply(message string) string {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "book") || strings.Contains(lower, "reserve") || strings.Contains(lower, "appointment"):
		return "We'd be happy to arrange that! Leave your contact info and our team will reach out to confirm the details."
	case strings.Contains(lower, "tasting") || strings.Contains(lower, "wine"):
		return "## Tastings We Love\n- **Domaine Chandon** - sparkling wine, beautiful grounds\n- **Frog's Leap** - organic, relaxed atmosphere\n- **Sterling Vineyards** - aerial tram with valley views\n\nMost wineries require reservations, so plan ahead!"
	case strings.Contains(lower, "restaurant") || strings.Contains(lower, "dinner") || strings.Contains(lower, "eat"):
		return "### Dining picks\n- **Bottega** in Yountville for Italian\n- **Farmstead** in St. Helena for farm-to-table\n- **Gott's Roadside** for a casual burger between tastings"
	default:
		return "Great question! I can help with wine tastings, restaurants, and local activities. What are you most interested in?"
	}
}

func newStubSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return uuid.New().String()
	}
	return hex.EncodeToString(b)
}
