package http

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack/slackevents"

	"github.com/andystumpf/CalendarToSlack/pkg/domain/interfaces"
	"github.com/andystumpf/CalendarToSlack/pkg/usecase"
	"github.com/andystumpf/CalendarToSlack/pkg/utils/errutil"
	"github.com/andystumpf/CalendarToSlack/pkg/utils/logging"
	"github.com/andystumpf/CalendarToSlack/pkg/utils/safe"
)

const (
	headerTimestamp = "X-Request-Timestamp"
	headerSignature = "X-Request-Signature"

	// maxRequestAge bounds replay exposure: a request whose timestamp is
	// this far from now is rejected even with a valid signature.
	maxRequestAge = 300 * time.Second
)

var errInvalidRequestBody = []byte(`{"error": "Request was invalid"}`)

// verifyRequestSignature checks the freshness and HMAC signature of an
// inbound webhook request. The signature header carries a version tag on the
// left of its first "=" and a lowercase hex digest on the right; the signed
// base string is "{version}:{timestamp}:{body}".
func verifyRequestSignature(secret, timestamp, signature string, body []byte, now time.Time) error {
	if timestamp == "" {
		return goerr.New("missing timestamp header")
	}
	if signature == "" {
		return goerr.New("missing signature header")
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return goerr.Wrap(err, "invalid timestamp")
	}

	// Compared in whole seconds: converting a huge age to time.Duration
	// would overflow int64 and wrap negative.
	age := now.Unix() - ts
	if age < 0 {
		age = -age
	}
	if age >= int64(maxRequestAge/time.Second) {
		return goerr.New("timestamp outside of freshness window",
			goerr.V("timestamp", timestamp),
			goerr.V("now", now.Unix()),
		)
	}

	// A header without "=" cannot match any computed digest; it is a
	// mismatch, not a malformed-request crash.
	version, digest, ok := strings.Cut(signature, "=")
	if !ok {
		return goerr.New("signature mismatch")
	}

	baseString := fmt.Sprintf("%s:%s:%s", version, timestamp, body)
	mac := hmac.New(sha256.New, []byte(secret))
	if _, err := mac.Write([]byte(baseString)); err != nil {
		return goerr.Wrap(err, "failed to compute HMAC")
	}
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(digest)) {
		return goerr.New("signature mismatch")
	}

	return nil
}

// SignatureMiddleware verifies request authenticity before any business
// logic runs. The signing secret comes from the secret source per request
// (cached by the source itself); a retrieval failure fails closed. Rejected
// requests get HTTP 400 with a fixed JSON body.
func SignatureMiddleware(secrets interfaces.SecretSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			body, err := io.ReadAll(r.Body)
			if err != nil {
				errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest, errInvalidRequestBody)
				return
			}
			safe.Close(ctx, r.Body)

			secret, err := secrets.SigningSecret(ctx)
			if err != nil {
				errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to retrieve signing secret"), http.StatusBadRequest, errInvalidRequestBody)
				return
			}

			timestamp := r.Header.Get(headerTimestamp)
			signature := r.Header.Get(headerSignature)

			if err := verifyRequestSignature(secret, timestamp, signature, body, time.Now()); err != nil {
				errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "request signature verification failed"), http.StatusBadRequest, errInvalidRequestBody)
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(body))
			next.ServeHTTP(w, r)
		})
	}
}

// WebhookHandler handles authenticated Slack Events API requests
type WebhookHandler struct {
	eventUC *usecase.EventUseCases
}

func NewWebhookHandler(eventUC *usecase.EventUseCases) *WebhookHandler {
	return &WebhookHandler{
		eventUC: eventUC,
	}
}

// ServeHTTP classifies the payload and responds. Authentication already
// happened in the middleware, so from here on every outcome is HTTP 200:
// error responses would make the platform retry the delivery and duplicate
// the side effects.
func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.From(ctx)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		errutil.Handle(ctx, goerr.Wrap(err, "failed to read request body"), "webhook body read failed")
		writeAck(ctx, w)
		return
	}

	event, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
	if err != nil {
		errutil.Handle(ctx, goerr.Wrap(err, "failed to parse event payload"), "webhook payload parse failed")
		writeAck(ctx, w)
		return
	}

	switch event.Type {
	case slackevents.URLVerification:
		var challenge slackevents.ChallengeResponse
		if err := json.Unmarshal(body, &challenge); err != nil {
			errutil.Handle(ctx, goerr.Wrap(err, "failed to unmarshal challenge"), "webhook challenge parse failed")
			writeAck(ctx, w)
			return
		}
		resp, err := json.Marshal(map[string]string{"challenge": challenge.Challenge})
		if err != nil {
			errutil.Handle(ctx, goerr.Wrap(err, "failed to marshal challenge response"), "webhook challenge response failed")
			writeAck(ctx, w)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		safe.Write(ctx, w, resp)

	case slackevents.CallbackEvent:
		ctx = logging.With(ctx, logger.With(
			"event_id", uuid.NewString(),
			"team_id", event.TeamID,
		))

		processed, err := h.eventUC.HandleCallbackEvent(ctx, &event)
		if err != nil {
			// Degrade to a generic acknowledgment: the platform retries on
			// error responses.
			errutil.Handle(ctx, err, "failed to handle callback event")
		}

		if processed {
			writeAck(ctx, w)
		} else {
			w.WriteHeader(http.StatusOK)
		}

	default:
		logger.Warn("unknown event payload type", "type", event.Type)
		w.WriteHeader(http.StatusOK)
	}
}

func writeAck(ctx context.Context, w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	safe.Write(ctx, w, []byte(`{}`))
}
