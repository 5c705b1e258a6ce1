package slackbot

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

const (
	timestampHeader = "X-Slack-Request-Timestamp"
	signatureHeader = "X-Slack-Signature"

	// The maximum shift/delay that we allow between an inbound request's
	// timestamp, and our current timestamp, to defend against replay attacks.
	// See https://docs.slack.dev/authentication/verifying-requests-from-slack.
	maxDifference = 5 * time.Minute

	// Slack API implementation detail.
	// See https://docs.slack.dev/authentication/verifying-requests-from-slack.
	sigVersion = "v0"
)

// CheckSignature authenticates an inbound Slack request based on its
// timestamp and signature headers and the raw request body. It returns
// [http.StatusOK] when the request is genuine, and otherwise the status
// code the caller must respond with. Callers must not process the
// request body unless this returns OK.
func CheckSignature(l zerolog.Logger, signingSecret string, headers http.Header, body []byte) int {
	if statusCode := checkTimestampHeader(l, headers); statusCode != http.StatusOK {
		return statusCode
	}
	return checkSignatureHeader(l, signingSecret, headers, body)
}

func checkTimestampHeader(l zerolog.Logger, headers http.Header) int {
	ts := headers.Get(timestampHeader)
	if ts == "" {
		l.Warn().Str("header", timestampHeader).Msg("unauthenticated: missing header")
		return http.StatusUnauthorized
	}

	secs, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		l.Warn().Str("header", timestampHeader).Str("got", ts).
			Msg("unauthenticated: invalid header value")
		return http.StatusUnauthorized
	}

	d := time.Since(time.Unix(secs, 0))
	if d.Abs() > maxDifference {
		l.Warn().Str("header", timestampHeader).Dur("difference", d).
			Msg("unauthenticated: stale header value")
		return http.StatusUnauthorized
	}

	return http.StatusOK
}

func checkSignatureHeader(l zerolog.Logger, signingSecret string, headers http.Header, body []byte) int {
	sig := headers.Get(signatureHeader)
	if sig == "" {
		l.Warn().Str("header", signatureHeader).Msg("unauthenticated: missing header")
		return http.StatusUnauthorized
	}

	if signingSecret == "" {
		l.Error().Msg("signing secret is not configured")
		return http.StatusInternalServerError
	}

	ts := headers.Get(timestampHeader)
	if !verifySignature(signingSecret, ts, sig, body) {
		l.Warn().Str("signature", sig).Msg("signature verification failed")
		return http.StatusUnauthorized
	}

	return http.StatusOK
}

// verifySignature implements
// https://docs.slack.dev/authentication/verifying-requests-from-slack.
func verifySignature(signingSecret, ts, want string, body []byte) bool {
	mac := hmac.New(sha256.New, []byte(signingSecret))
	mac.Write(fmt.Appendf(nil, "%s:%s:", sigVersion, ts))
	mac.Write(body)

	got := fmt.Sprintf("%s=%s", sigVersion, hex.EncodeToString(mac.Sum(nil)))
	return hmac.Equal([]byte(got), []byte(want))
}
