// Package slackbot authenticates inbound Slack requests and wraps the
// outbound Slack Web API calls that the OOO bot needs.
package slackbot

import (
	"context"
	"fmt"
	"time"

	"github.com/slack-go/slack"
)

const timeout = 3 * time.Second

// Client is a thin wrapper around the Slack Web API. It is safe for
// concurrent use.
type Client struct {
	api *slack.Client
}

func NewClient(botToken string) *Client {
	return &Client{api: slack.New(botToken)}
}

// UserDisplayName resolves a Slack user ID to the person's real name,
// which is what the calendar event summary carries.
func (c *Client) UserDisplayName(ctx context.Context, userID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	profile, err := c.api.GetUserProfileContext(ctx, &slack.GetUserProfileParameters{UserID: userID})
	if err != nil {
		return "", fmt.Errorf("failed to get user profile: %w", err)
	}
	return profile.RealName, nil
}

// PostToResponseURL sends an ephemeral reply to the short-lived callback
// URL that accompanied a slash command.
func (c *Client) PostToResponseURL(ctx context.Context, url, text string) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return slack.PostWebhookContext(ctx, url, &slack.WebhookMessage{
		Text:         text,
		ResponseType: slack.ResponseTypeEphemeral,
	})
}

// PostChannelMessage posts a regular message to a channel.
func (c *Client) PostChannelMessage(ctx context.Context, channel, text string) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	_, _, err := c.api.PostMessageContext(ctx, channel, slack.MsgOptionText(text, false))
	return err
}

// OpenModal opens a modal view using the trigger ID of a user
// interaction. Trigger IDs expire after a few seconds, so this must be
// called promptly.
func (c *Client) OpenModal(ctx context.Context, triggerID string, view slack.ModalViewRequest) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	_, err := c.api.OpenViewContext(ctx, triggerID, view)
	return err
}

// UpdateModal replaces the contents of an already-open modal view.
func (c *Client) UpdateModal(ctx context.Context, viewID string, view slack.ModalViewRequest) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	_, err := c.api.UpdateViewContext(ctx, view, "", "", viewID)
	return err
}
