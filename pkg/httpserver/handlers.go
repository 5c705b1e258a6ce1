package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/slack-go/slack"

	"github.com/brokentusk/palmtree/pkg/dates"
	"github.com/brokentusk/palmtree/pkg/slackbot"
)

const (
	unauthenticatedText = "Ahha! Nice try. Didn't work."
	badDateText         = "I couldn't figure that out. Maybe share the date in dd-mm-yyyy format?"
	ackText             = "I'm on it! :robot_face:"
	retryText           = "Unable to create events. Try again in a while?"

	greytHRReminder = "Don't forget to apply on <https://brokentusk.greythr.com/|greytHR> too!  :palm_tree:"
)

// slashCommandHandler handles the /ooo slash command. With no text it
// opens the date-picker modal; with text it resolves the date, replies
// with an immediate acknowledgement, and creates the event after the
// response has been flushed.
func (s *httpServer) slashCommandHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	ctx := r.Context()
	l := zerolog.Ctx(ctx)

	if _, ok := authenticate(l, w, r, s.signingSecret); !ok {
		return
	}

	cmd, err := slack.SlashCommandParse(r)
	if err != nil {
		l.Warn().Err(err).Msg("failed to parse slash command")
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	l.Info().Str("command", cmd.Command).Str("text", cmd.Text).Str("user_id", cmd.UserID).
		Msg("received slash command")

	if strings.TrimSpace(cmd.Text) == "" {
		view := slackbot.DatePickerModal(todayInKolkata(), "", false, "")
		if err := s.chat.OpenModal(ctx, cmd.TriggerID, view); err != nil {
			l.Err(err).Msg("failed to open date-picker modal")
			fmt.Fprint(w, "Unable to open the date picker. Try again in a while?")
		}
		return
	}

	days, err := dates.ResolveText(cmd.Text, time.Now())
	if err != nil {
		l.Warn().Err(err).Str("text", cmd.Text).Msg("no date in slash command text")
		fmt.Fprint(w, badDateText)
		return
	}

	// Slack expects the acknowledgement within seconds; the Slack and
	// Google API calls happen after the response is on the wire.
	userID, responseURL := cmd.UserID, cmd.ResponseURL
	taskCtx := context.WithoutCancel(ctx)
	AfterResponse(ctx, func() {
		s.createEventAndNotify(taskCtx, userID, responseURL, days)
	})

	fmt.Fprint(w, ackText)
}

// createEventAndNotify is the deferred half of the slash-command flow.
// Once the event is created, no downstream failure undoes it; the user
// is told the outcome either way.
func (s *httpServer) createEventAndNotify(ctx context.Context, userID, responseURL string, days dates.Range) {
	l := zerolog.Ctx(ctx)

	name, err := s.chat.UserDisplayName(ctx, userID)
	if err != nil {
		l.Err(err).Str("user_id", userID).Msg("failed to look up user display name")
		s.postOutcome(ctx, responseURL, retryText)
		return
	}

	event, err := s.cal.CreateOOOEvent(ctx, name, days, "")
	if err != nil {
		l.Err(err).Msg("failed to create calendar event")
		s.postOutcome(ctx, responseURL, retryText)
		return
	}

	longDate := formatLongDate(days)
	l.Info().Str("event_id", event.ID).Str("summary", event.Summary).Str("when", longDate).
		Msg("created OOO event")

	s.postOutcome(ctx, responseURL, fmt.Sprintf(
		"Created an event for %s - <%s|%s>. %s", longDate, event.HTMLLink, event.Summary, greytHRReminder))

	if s.broadcastChannel != "" {
		msg := fmt.Sprintf("<@%s> will be OOO on %s  :palm_tree:", userID, longDate)
		if err := s.chat.PostChannelMessage(ctx, s.broadcastChannel, msg); err != nil {
			// The event exists; a missed announcement stays between us and the log.
			l.Warn().Err(err).Str("channel", s.broadcastChannel).Msg("failed to post announcement")
		}
	}
}

func (s *httpServer) postOutcome(ctx context.Context, responseURL, text string) {
	if err := s.chat.PostToResponseURL(ctx, responseURL, text); err != nil {
		zerolog.Ctx(ctx).Err(err).Msg("failed to post to response URL")
	}
}

// modalHandler dispatches Slack interactive payloads: global shortcuts
// open the date picker, the multiple-days button re-renders it as a
// range picker, and view submissions create the event.
func (s *httpServer) modalHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	ctx := r.Context()
	l := zerolog.Ctx(ctx)

	if _, ok := authenticate(l, w, r, s.signingSecret); !ok {
		return
	}

	var payload slack.InteractionCallback
	if err := json.Unmarshal([]byte(r.PostFormValue("payload")), &payload); err != nil {
		l.Warn().Err(err).Msg("failed to parse interactive payload")
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	l.Info().Str("payload_type", string(payload.Type)).Str("user_id", payload.User.ID).
		Msg("received interactive payload")

	switch payload.Type {
	case slack.InteractionTypeShortcut:
		s.handleShortcut(ctx, w, &payload)
	case slack.InteractionTypeBlockActions:
		s.handleBlockActions(ctx, w, &payload)
	case slack.InteractionTypeViewSubmission:
		s.handleViewSubmission(ctx, w, &payload)
	default:
		l.Debug().Str("payload_type", string(payload.Type)).Msg("ignoring interaction type")
	}
}

func (s *httpServer) handleShortcut(ctx context.Context, w http.ResponseWriter, payload *slack.InteractionCallback) {
	view := slackbot.DatePickerModal(todayInKolkata(), "", false, "")
	if err := s.chat.OpenModal(ctx, payload.TriggerID, view); err != nil {
		zerolog.Ctx(ctx).Err(err).Msg("failed to open date-picker modal")
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (s *httpServer) handleBlockActions(ctx context.Context, w http.ResponseWriter, payload *slack.InteractionCallback) {
	for _, action := range payload.ActionCallback.BlockActions {
		if action.ActionID != slackbot.ActionIDMultipleDays {
			continue
		}

		// Carry the already-picked day and reason into the range picker.
		from := stateValue(payload, slackbot.BlockIDFromDate, slackbot.ActionIDFromDate).SelectedDate
		if from == "" {
			from = todayInKolkata()
		}
		reason := stateValue(payload, slackbot.BlockIDReason, slackbot.ActionIDReason).Value

		view := slackbot.DatePickerModal(from, "", true, reason)
		if err := s.chat.UpdateModal(ctx, payload.View.ID, view); err != nil {
			zerolog.Ctx(ctx).Err(err).Msg("failed to update modal to range picker")
			w.WriteHeader(http.StatusInternalServerError)
		}
		return
	}
}

// handleViewSubmission validates the picked dates and, unlike the
// slash-command flow, creates the event synchronously: the response
// itself carries the outcome back into the modal.
func (s *httpServer) handleViewSubmission(ctx context.Context, w http.ResponseWriter, payload *slack.InteractionCallback) {
	l := zerolog.Ctx(ctx)

	from := stateValue(payload, slackbot.BlockIDFromDate, slackbot.ActionIDFromDate).SelectedDate
	to := ""
	if payload.View.CallbackID == slackbot.CallbackIDRangePicker {
		to = stateValue(payload, slackbot.BlockIDToDate, slackbot.ActionIDToDate).SelectedDate
	}
	reason := stateValue(payload, slackbot.BlockIDReason, slackbot.ActionIDReason).Value

	days, err := dates.ResolveRange(from, to)
	if err != nil {
		var fieldErr *dates.FieldError
		if !errors.As(err, &fieldErr) {
			l.Err(err).Msg("failed to resolve modal dates")
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		blockID := slackbot.BlockIDFromDate
		if fieldErr.Field == "to" {
			blockID = slackbot.BlockIDToDate
		}
		writeJSON(l, w, slack.NewErrorsViewSubmissionResponse(map[string]string{blockID: fieldErr.Message}))
		return
	}

	text := retryText
	if name, err := s.chat.UserDisplayName(ctx, payload.User.ID); err != nil {
		l.Err(err).Str("user_id", payload.User.ID).Msg("failed to look up user display name")
	} else if event, err := s.cal.CreateOOOEvent(ctx, name, days, reason); err != nil {
		l.Err(err).Msg("failed to create calendar event")
	} else {
		l.Info().Str("event_id", event.ID).Str("summary", event.Summary).Msg("created OOO event")
		text = fmt.Sprintf("Created the event - <%s|%s>. %s", event.HTMLLink, event.Summary, greytHRReminder)
	}

	view := slackbot.ResultModal(text)
	writeJSON(l, w, slack.NewUpdateViewSubmissionResponse(&view))
}

// testHandler echoes back whatever Slack sent. Diagnostic only.
func (s *httpServer) testHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	l := zerolog.Ctx(r.Context())

	body, ok := authenticate(l, w, r, s.signingSecret)
	if !ok {
		return
	}

	_ = r.ParseForm()

	var jsonBody any
	_ = json.Unmarshal(body, &jsonBody) // null unless the body is JSON

	writeJSON(l, w, map[string]any{
		"args": r.URL.Query(),
		"form": r.PostForm,
		"data": string(body),
		"json": jsonBody,
	})
}

// authenticate reads the raw body, verifies the Slack signature against
// it, and restores the body for form parsing. On failure it writes the
// rejection itself and reports false, so callers must stop immediately.
func authenticate(l *zerolog.Logger, w http.ResponseWriter, r *http.Request, signingSecret string) ([]byte, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		l.Warn().Err(err).Msg("failed to read request body")
		w.WriteHeader(http.StatusBadRequest)
		return nil, false
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	if statusCode := slackbot.CheckSignature(*l, signingSecret, r.Header, body); statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
		if statusCode == http.StatusUnauthorized {
			fmt.Fprint(w, unauthenticatedText)
		}
		return nil, false
	}

	return body, true
}

func stateValue(payload *slack.InteractionCallback, blockID, actionID string) slack.BlockAction {
	if payload.View.State == nil {
		return slack.BlockAction{}
	}
	return payload.View.State.Values[blockID][actionID]
}

func writeJSON(l *zerolog.Logger, w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		l.Err(err).Msg("failed to encode JSON response")
	}
}

func todayInKolkata() string {
	return time.Now().In(dates.Kolkata).Format(dates.ISODate)
}

// formatLongDate renders a range the way the result messages show it,
// e.g. "Monday, 02 September 2024" or "... to Wednesday, 04 ...".
func formatLongDate(days dates.Range) string {
	const layout = "Monday, 02 January 2006"
	if days.Days() <= 1 {
		return days.Start.Format(layout)
	}
	lastDay := days.End.AddDate(0, 0, -1)
	return days.Start.Format(layout) + " to " + lastDay.Format(layout)
}
