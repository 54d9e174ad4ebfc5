package http_test

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	httpctrl "github.com/andystumpf/CalendarToSlack/pkg/controller/http"
	"github.com/andystumpf/CalendarToSlack/pkg/repository/memory"
	"github.com/andystumpf/CalendarToSlack/pkg/service/secret"
	"github.com/andystumpf/CalendarToSlack/pkg/usecase"
)

func sign(secretKey, version, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secretKey))
	fmt.Fprintf(mac, "%s:%s:%s", version, timestamp, body)
	return version + "=" + hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyRequestSignature(t *testing.T) {
	const secretKey = "test-signing-secret"
	now := time.Unix(1700000000, 0)
	body := []byte(`{"type":"event_callback"}`)
	timestamp := strconv.FormatInt(now.Unix(), 10)

	t.Run("accepts a fresh signed request", func(t *testing.T) {
		sig := sign(secretKey, "v0", timestamp, body)
		gt.NoError(t, httpctrl.VerifyRequestSignature(secretKey, timestamp, sig, body, now))
	})

	t.Run("version tag participates in the base string", func(t *testing.T) {
		sig := sign(secretKey, "v1", timestamp, body)
		gt.NoError(t, httpctrl.VerifyRequestSignature(secretKey, timestamp, sig, body, now))
	})

	t.Run("rejects a tampered body", func(t *testing.T) {
		sig := sign(secretKey, "v0", timestamp, body)
		tampered := []byte(`{"type":"event_callback" }`)
		gt.Error(t, httpctrl.VerifyRequestSignature(secretKey, timestamp, sig, tampered, now))
	})

	t.Run("rejects a tampered signature", func(t *testing.T) {
		sig := sign(secretKey, "v0", timestamp, body)
		flipped := sig[:len(sig)-1] + flipHexDigit(sig[len(sig)-1])
		gt.Error(t, httpctrl.VerifyRequestSignature(secretKey, timestamp, flipped, body, now))
	})

	t.Run("rejects a signature from another secret", func(t *testing.T) {
		sig := sign("other-secret", "v0", timestamp, body)
		gt.Error(t, httpctrl.VerifyRequestSignature(secretKey, timestamp, sig, body, now))
	})

	t.Run("rejects a replayed timestamp", func(t *testing.T) {
		oldTS := strconv.FormatInt(now.Add(-300*time.Second).Unix(), 10)
		sig := sign(secretKey, "v0", oldTS, body)
		gt.Error(t, httpctrl.VerifyRequestSignature(secretKey, oldTS, sig, body, now))
	})

	t.Run("rejects a future timestamp", func(t *testing.T) {
		futureTS := strconv.FormatInt(now.Add(400*time.Second).Unix(), 10)
		sig := sign(secretKey, "v0", futureTS, body)
		gt.Error(t, httpctrl.VerifyRequestSignature(secretKey, futureTS, sig, body, now))
	})

	t.Run("rejects a timestamp far enough away to overflow a duration", func(t *testing.T) {
		farTS := strconv.FormatInt(now.Unix()+9223372037, 10)
		sig := sign(secretKey, "v0", farTS, body)
		gt.Error(t, httpctrl.VerifyRequestSignature(secretKey, farTS, sig, body, now))
	})

	t.Run("accepts skew just inside the window", func(t *testing.T) {
		nearTS := strconv.FormatInt(now.Add(-299*time.Second).Unix(), 10)
		sig := sign(secretKey, "v0", nearTS, body)
		gt.NoError(t, httpctrl.VerifyRequestSignature(secretKey, nearTS, sig, body, now))
	})

	t.Run("rejects a non-numeric timestamp", func(t *testing.T) {
		sig := sign(secretKey, "v0", "not-a-number", body)
		gt.Error(t, httpctrl.VerifyRequestSignature(secretKey, "not-a-number", sig, body, now))
	})

	t.Run("rejects a signature without a version tag", func(t *testing.T) {
		gt.Error(t, httpctrl.VerifyRequestSignature(secretKey, timestamp, "deadbeef", body, now))
	})

	t.Run("rejects missing headers", func(t *testing.T) {
		sig := sign(secretKey, "v0", timestamp, body)
		gt.Error(t, httpctrl.VerifyRequestSignature(secretKey, "", sig, body, now))
		gt.Error(t, httpctrl.VerifyRequestSignature(secretKey, timestamp, "", body, now))
	})
}

func flipHexDigit(c byte) string {
	if c == '0' {
		return "1"
	}
	return "0"
}

type failingSecretSource struct{}

func (failingSecretSource) SigningSecret(ctx context.Context) (string, error) {
	return "", goerr.New("secret backend unavailable")
}

func newTestServer(secrets secret.Static) *httpctrl.Server {
	uc := usecase.New(memory.New())
	return httpctrl.New(httpctrl.WithWebhook(httpctrl.NewWebhookHandler(uc.Event), secrets))
}

func TestWebhookEndpoint(t *testing.T) {
	const secretKey = "test-signing-secret"

	post := func(srv *httpctrl.Server, body []byte, signed bool) *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/hooks/slack/event", bytes.NewReader(body))
		if signed {
			ts := strconv.FormatInt(time.Now().Unix(), 10)
			req.Header.Set("X-Request-Timestamp", ts)
			req.Header.Set("X-Request-Signature", sign(secretKey, "v0", ts, body))
		}
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		return rec
	}

	t.Run("answers the url_verification handshake", func(t *testing.T) {
		srv := newTestServer(secret.Static(secretKey))
		body := []byte(`{"type":"url_verification","challenge":"ch4lleng3"}`)

		rec := post(srv, body, true)
		gt.Value(t, rec.Code).Equal(200)
		gt.Value(t, rec.Header().Get("Content-Type")).Equal("application/json")

		var resp map[string]string
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp)).Required()
		gt.Value(t, resp["challenge"]).Equal("ch4lleng3")
	})

	t.Run("rejects an unsigned request", func(t *testing.T) {
		srv := newTestServer(secret.Static(secretKey))
		body := []byte(`{"type":"url_verification","challenge":"ch4lleng3"}`)

		rec := post(srv, body, false)
		gt.Value(t, rec.Code).Equal(400)
		gt.Value(t, rec.Body.String()).Equal(`{"error": "Request was invalid"}`)
	})

	t.Run("rejects a request signed with the wrong secret", func(t *testing.T) {
		srv := newTestServer(secret.Static("another-secret"))
		body := []byte(`{"type":"url_verification","challenge":"ch4lleng3"}`)

		rec := post(srv, body, true)
		gt.Value(t, rec.Code).Equal(400)
		gt.Value(t, rec.Body.String()).Equal(`{"error": "Request was invalid"}`)
	})

	t.Run("fails closed when the secret source errors", func(t *testing.T) {
		uc := usecase.New(memory.New())
		srv := httpctrl.New(httpctrl.WithWebhook(httpctrl.NewWebhookHandler(uc.Event), failingSecretSource{}))
		body := []byte(`{"type":"url_verification","challenge":"ch4lleng3"}`)

		rec := post(srv, body, true)
		gt.Value(t, rec.Code).Equal(400)
		gt.Value(t, rec.Body.String()).Equal(`{"error": "Request was invalid"}`)
	})

	t.Run("acknowledges a bot message without side effects", func(t *testing.T) {
		srv := newTestServer(secret.Static(secretKey))
		body := []byte(`{
			"type": "event_callback",
			"team_id": "T123",
			"event": {
				"type": "message",
				"subtype": "bot_message",
				"bot_id": "B123",
				"channel": "D123",
				"channel_type": "im",
				"text": "show"
			}
		}`)

		rec := post(srv, body, true)
		gt.Value(t, rec.Code).Equal(200)
		gt.Value(t, rec.Body.Len()).Equal(0)
	})

	t.Run("acknowledges an authenticated malformed payload", func(t *testing.T) {
		srv := newTestServer(secret.Static(secretKey))
		body := []byte(`not json at all`)

		rec := post(srv, body, true)
		gt.Value(t, rec.Code).Equal(200)
	})
}
