// Package gcal creates all-day out-of-office events on a shared
// Google Calendar, using a service account.
package gcal

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/brokentusk/palmtree/pkg/dates"
)

const (
	timeout      = 10 * time.Second
	retryBackoff = 2 * time.Second

	// Calendar all-day events carry a named zone, not an offset.
	eventTimeZone = "Asia/Kolkata"
)

// Event is the subset of a created calendar event that the bot reports
// back to the user.
type Event struct {
	ID       string
	Summary  string
	HTMLLink string
}

// Client inserts events into a single shared calendar. It is safe for
// concurrent use.
type Client struct {
	svc        *calendar.Service
	calendarID string
}

// NewClient builds a calendar client from a base64-encoded service
// account key, as provided in the environment.
func NewClient(ctx context.Context, calendarID, b64ServiceAccountKey string) (*Client, error) {
	key, err := base64.StdEncoding.DecodeString(b64ServiceAccountKey)
	if err != nil {
		return nil, fmt.Errorf("gcal: decoding service account key: %w", err)
	}

	cfg, err := google.JWTConfigFromJSON(key, calendar.CalendarScope)
	if err != nil {
		return nil, fmt.Errorf("gcal: parsing service account key: %w", err)
	}

	svc, err := calendar.NewService(ctx, option.WithHTTPClient(cfg.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("gcal: initializing calendar service: %w", err)
	}

	return &Client{svc: svc, calendarID: calendarID}, nil
}

// CreateOOOEvent inserts an all-day event covering the given day range,
// titled with the person's display name and an optional reason.
// Rate-limited inserts are retried once.
func (c *Client) CreateOOOEvent(ctx context.Context, displayName string, days dates.Range, reason string) (*Event, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ev := oooEvent(displayName, days, reason)

	created, err := c.svc.Events.Insert(c.calendarID, ev).Context(ctx).Do()
	if shouldRetry(err) {
		time.Sleep(retryBackoff)
		created, err = c.svc.Events.Insert(c.calendarID, ev).Context(ctx).Do()
	}
	if err != nil {
		return nil, fmt.Errorf("gcal: inserting event: %w", err)
	}

	return &Event{
		ID:       created.Id,
		Summary:  created.Summary,
		HTMLLink: created.HtmlLink,
	}, nil
}

func oooEvent(displayName string, days dates.Range, reason string) *calendar.Event {
	summary := "OOO: " + displayName
	if reason != "" {
		summary += " (" + reason + ")"
	}

	return &calendar.Event{
		Summary: summary,
		Start: &calendar.EventDateTime{
			Date:     days.Start.Format(dates.ISODate),
			TimeZone: eventTimeZone,
		},
		End: &calendar.EventDateTime{
			Date:     days.End.Format(dates.ISODate),
			TimeZone: eventTimeZone,
		},
	}
}

func shouldRetry(err error) bool {
	var gErr *googleapi.Error
	if !errors.As(err, &gErr) {
		return false
	}

	for _, e := range gErr.Errors {
		if e.Reason == "rateLimitExceeded" {
			return true
		}
	}
	return false
}
