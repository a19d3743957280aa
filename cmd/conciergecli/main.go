// Command conciergecli hosts the widget engine in a terminal against a
// running concierge API (see cmd/devserver for a local one).
package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/oakandvine/concierge-widget/internal/backend"
	"github.com/oakandvine/concierge-widget/internal/config"
	"github.com/oakandvine/concierge-widget/internal/leads"
	"github.com/oakandvine/concierge-widget/internal/widget"
	"github.com/oakandvine/concierge-widget/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	settings := config.Load()
	logger := logging.New(settings.LogLevel)

	client := backend.NewClient(settings.APIBase, settings.APIKey,
		backend.WithLogger(logger),
		backend.WithHTTPClient(&http.Client{Timeout: settings.HTTPTimeout}),
	)

	renderer := newConsoleRenderer(os.Stdout)
	w, err := widget.New(settings, client, renderer, widget.WithLogger(logger))
	if err != nil {
		logger.Error("conciergecli: startup failed", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	w.Init(ctx)
	defer w.Shutdown()

	fmt.Println("commands: /open /close /lead name;email;phone /cancel /quit; anything else is sent as a message")

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "/quit":
			return
		case line == "/open":
			w.Open()
		case line == "/close":
			w.Close()
		case line == "/cancel":
			w.CancelLead()
		case strings.HasPrefix(line, "/lead"):
			rec := parseLead(strings.TrimSpace(strings.TrimPrefix(line, "/lead")))
			_ = w.SubmitLead(ctx, rec) // failures already surface via the renderer
		case line == "":
			continue
		default:
			if !w.IsOpen() {
				w.Open()
			}
			w.Send(ctx, line)
		}
	}
}

// parseLead splits "name;email;phone"; trailing fields may be omitted.
func parseLead(arg string) leads.Record {
	parts := strings.SplitN(arg, ";", 3)
	rec := leads.Record{}
	if len(parts) > 0 {
		rec.Name = strings.TrimSpace(parts[0])
	}
	if len(parts) > 1 {
		rec.Email = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		rec.Phone = strings.TrimSpace(parts[2])
	}
	return rec
}
