// Package config carries host embed settings and per-tenant widget
// branding, with defaults that keep the widget usable when the remote
// branding service is unreachable.
package config

// WidgetConfig is the tenant branding and copy the widget renders.
type WidgetConfig struct {
	BusinessName   string
	PrimaryColor   string
	WidgetTitle    string
	WidgetSubtitle string
	WelcomeMessage string
}

// Remote is the branding payload returned by the tenant API. Absent
// fields decode as empty strings.
type Remote struct {
	BusinessName   string `json:"business_name"`
	PrimaryColor   string `json:"primary_color"`
	WidgetTitle    string `json:"widget_title"`
	WidgetSubtitle string `json:"widget_subtitle"`
	WelcomeMessage string `json:"welcome_message"`
}

// Default returns the built-in branding used until (and unless) the
// remote config arrives.
func Default() WidgetConfig {
	return WidgetConfig{
		BusinessName:   "your hotel",
		PrimaryColor:   "#722F37",
		WidgetTitle:    "Concierge",
		WidgetSubtitle: "Your personal wine country guide",
		WelcomeMessage: "Hello! I'm your Napa Valley concierge. I can help you plan wine tastings, find amazing restaurants, and discover local experiences. What brings you to wine country?",
	}
}

// Merge overlays non-empty remote fields on c. An empty remote field
// keeps the existing value; the loader does not distinguish absent
// from intentionally empty.
func (c WidgetConfig) Merge(remote *Remote) WidgetConfig {
	if remote == nil {
		return c
	}
	if remote.BusinessName != "" {
		c.BusinessName = remote.BusinessName
	}
	if remote.PrimaryColor != "" {
		c.PrimaryColor = remote.PrimaryColor
	}
	if remote.WidgetTitle != "" {
		c.WidgetTitle = remote.WidgetTitle
	}
	if remote.WidgetSubtitle != "" {
		c.WidgetSubtitle = remote.WidgetSubtitle
	}
	if remote.WelcomeMessage != "" {
		c.WelcomeMessage = remote.WelcomeMessage
	}
	return c
}
