package slackbot

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

const testSecret = "8f742231b10e8888abcd99yyyzzz85a5"

func sign(secret, ts string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "v0:%s:%s", ts, body)
	return "v0=" + hex.EncodeToString(mac.Sum(nil))
}

func freshTimestamp() string {
	return strconv.FormatInt(time.Now().Unix(), 10)
}

func signedHeaders(secret, ts string, body []byte) http.Header {
	h := http.Header{}
	h.Set(timestampHeader, ts)
	h.Set(signatureHeader, sign(secret, ts, body))
	return h
}

func TestCheckSignature(t *testing.T) {
	body := []byte("token=xyz&command=%2Fooo&text=tomorrow")
	ts := freshTimestamp()

	tests := []struct {
		name    string
		secret  string
		headers http.Header
		body    []byte
		want    int
	}{
		{
			name:    "valid",
			secret:  testSecret,
			headers: signedHeaders(testSecret, ts, body),
			body:    body,
			want:    http.StatusOK,
		},
		{
			name:    "mutated_body",
			secret:  testSecret,
			headers: signedHeaders(testSecret, ts, body),
			body:    append([]byte("x"), body...),
			want:    http.StatusUnauthorized,
		},
		{
			name:   "mutated_timestamp",
			secret: testSecret,
			headers: func() http.Header {
				h := signedHeaders(testSecret, ts, body)
				h.Set(timestampHeader, strconv.FormatInt(time.Now().Unix()+1, 10))
				return h
			}(),
			body: body,
			want: http.StatusUnauthorized,
		},
		{
			name:    "mutated_secret",
			secret:  testSecret + "x",
			headers: signedHeaders(testSecret, ts, body),
			body:    body,
			want:    http.StatusUnauthorized,
		},
		{
			name:   "missing_signature_header",
			secret: testSecret,
			headers: func() http.Header {
				h := http.Header{}
				h.Set(timestampHeader, ts)
				return h
			}(),
			body: body,
			want: http.StatusUnauthorized,
		},
		{
			name:    "missing_timestamp_header",
			secret:  testSecret,
			headers: http.Header{},
			body:    body,
			want:    http.StatusUnauthorized,
		},
		{
			name:   "non_numeric_timestamp",
			secret: testSecret,
			headers: func() http.Header {
				h := signedHeaders(testSecret, "yesterday", body)
				return h
			}(),
			body: body,
			want: http.StatusUnauthorized,
		},
		{
			name:   "stale_timestamp",
			secret: testSecret,
			headers: func() http.Header {
				old := strconv.FormatInt(time.Now().Add(-10*time.Minute).Unix(), 10)
				return signedHeaders(testSecret, old, body)
			}(),
			body: body,
			want: http.StatusUnauthorized,
		},
		{
			name:    "unconfigured_secret",
			secret:  "",
			headers: signedHeaders(testSecret, ts, body),
			body:    body,
			want:    http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckSignature(zerolog.Nop(), tt.secret, tt.headers, tt.body)
			if got != tt.want {
				t.Errorf("CheckSignature() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestVerifySignatureSingleByteMutations(t *testing.T) {
	body := []byte("payload")
	ts := "1531420618"
	want := sign(testSecret, ts, body)

	if !verifySignature(testSecret, ts, want, body) {
		t.Fatal("verifySignature() = false for a matching signature")
	}

	for i := range body {
		mutated := append([]byte(nil), body...)
		mutated[i] ^= 0x01
		if verifySignature(testSecret, ts, want, mutated) {
			t.Errorf("verifySignature() = true with body byte %d flipped", i)
		}
	}
}
