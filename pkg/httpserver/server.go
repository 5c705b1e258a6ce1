package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/rs/zerolog/log"
	"github.com/slack-go/slack"
	"github.com/urfave/cli/v3"

	"github.com/brokentusk/palmtree/pkg/dates"
	"github.com/brokentusk/palmtree/pkg/gcal"
	"github.com/brokentusk/palmtree/pkg/slackbot"
)

const (
	readTimeout = 3 * time.Second

	// Modal submissions create the calendar event inside the
	// request/response cycle, so writes need more headroom than reads.
	writeTimeout = 30 * time.Second
)

// ChatClient is the Slack surface the handlers depend on.
type ChatClient interface {
	UserDisplayName(ctx context.Context, userID string) (string, error)
	PostToResponseURL(ctx context.Context, url, text string) error
	PostChannelMessage(ctx context.Context, channel, text string) error
	OpenModal(ctx context.Context, triggerID string, view slack.ModalViewRequest) error
	UpdateModal(ctx context.Context, viewID string, view slack.ModalViewRequest) error
}

// CalendarClient is the calendar surface the handlers depend on.
type CalendarClient interface {
	CreateOOOEvent(ctx context.Context, displayName string, days dates.Range, reason string) (*gcal.Event, error)
}

type httpServer struct {
	httpPort         int
	signingSecret    string
	broadcastChannel string // Empty means don't announce new events.

	chat ChatClient
	cal  CalendarClient
}

func newHTTPServer(ctx context.Context, cmd *cli.Command) (*httpServer, error) {
	s := &httpServer{
		httpPort:         cmd.Int("http-port"),
		signingSecret:    cmd.String("slack-signing-secret"),
		broadcastChannel: cmd.String("slack-broadcast-channel"),
	}

	botToken := cmd.String("slack-bot-token")
	calendarID := cmd.String("calendar-id")
	saKey := cmd.String("google-service-account-key")

	switch {
	case s.signingSecret == "":
		return nil, errors.New("Slack signing secret is required")
	case botToken == "":
		return nil, errors.New("Slack bot token is required")
	case calendarID == "":
		return nil, errors.New("calendar ID is required")
	case saKey == "":
		return nil, errors.New("Google service account key is required")
	}

	cal, err := gcal.NewClient(ctx, calendarID, saKey)
	if err != nil {
		return nil, err
	}

	s.chat = slackbot.NewClient(botToken)
	s.cal = cal
	return s, nil
}

// run starts the HTTP server that exposes the bot's webhooks.
// This is blocking, to keep the process running.
func (s *httpServer) run() error {
	server := &http.Server{
		Addr:         net.JoinHostPort("", strconv.Itoa(s.httpPort)),
		Handler:      s.routes(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	log.Info().Msgf("HTTP server listening on port %d", s.httpPort)
	err := server.ListenAndServe()
	if err != nil {
		log.Err(err).Send()
		return err
	}

	return nil
}

func (s *httpServer) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("POST /ooo", s.wrap(s.slashCommandHandler))
	mux.HandleFunc("POST /ooo/create", s.wrap(s.slashCommandHandler))
	mux.HandleFunc("POST /modal", s.wrap(s.modalHandler))
	mux.HandleFunc("POST /test", s.wrap(s.testHandler))
	return mux
}

// wrap gives each signed route a request-scoped logger and a
// deferred-task slot that fires after the response is flushed.
func (s *httpServer) wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := log.With().
			Str("http_method", r.Method).
			Str("url_path", r.URL.EscapedPath()).
			Str("request_id", shortuuid.New()).
			Logger()
		l.Info().Msg("received HTTP request")

		afterResponse(next)(w, r.WithContext(l.WithContext(r.Context())))
	}
}

func (s *httpServer) healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}
