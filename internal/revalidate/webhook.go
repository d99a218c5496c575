package revalidate

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/balcao/balcao/internal/metrics"
)

// Headers sent with every webhook delivery.
const (
	HeaderSignature  = "X-Balcao-Signature"
	HeaderTimestamp  = "X-Balcao-Timestamp"
	HeaderDeliveryID = "X-Balcao-Delivery-Id"
)

// DefaultReplayWindow is how far a delivery timestamp may drift from the
// receiver's clock.
const DefaultReplayWindow = 5 * time.Minute

var (
	// ErrReplayWindowExceeded is returned when the timestamp is outside the replay window.
	ErrReplayWindowExceeded = errors.New("timestamp outside replay window")
	// ErrInvalidSignature is returned when signature verification fails.
	ErrInvalidSignature = errors.New("invalid signature")
)

// Backoff between delivery attempts, each with ±20% jitter.
var webhookRetryDelays = []time.Duration{
	250 * time.Millisecond,
	1 * time.Second,
	4 * time.Second,
}

const jitterFactor = 0.2

// WebhookPayload is the JSON body of a delivery.
type WebhookPayload struct {
	Paths []string  `json:"paths"`
	At    time.Time `json:"at"`
}

// Sign returns the hex HMAC-SHA256 of "{timestamp}.{body}".
func Sign(secret string, timestamp int64, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	mac.Write([]byte{'.'})
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a delivery signature as a receiver would.
func VerifySignature(secret, signature string, timestamp int64, body []byte, now time.Time, window time.Duration) error {
	drift := now.Unix() - timestamp
	if drift < 0 {
		drift = -drift
	}
	if drift > int64(window.Seconds()) {
		return ErrReplayWindowExceeded
	}
	if !hmac.Equal([]byte(Sign(secret, timestamp, body)), []byte(signature)) {
		return ErrInvalidSignature
	}
	return nil
}

// NewWebhookClient returns an HTTP client with short timeouts that does not
// follow redirects.
func NewWebhookClient() *http.Client {
	return &http.Client{
		Timeout: 5 * time.Second,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   2 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   2 * time.Second,
			ResponseHeaderTimeout: 3 * time.Second,
			MaxIdleConnsPerHost:   4,
			IdleConnTimeout:       90 * time.Second,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// WebhookNotifier POSTs stale paths to a front end's revalidation endpoint,
// signed with a shared secret. Delivery runs in the background with a few
// retries; failures are logged and counted.
type WebhookNotifier struct {
	url     string
	secret  string
	client  *http.Client
	delays  []time.Duration
	logger  *slog.Logger
	metrics metrics.Recorder
	now     func() time.Time
	wg      sync.WaitGroup
}

// NewWebhookNotifier creates a notifier delivering to url. A nil client
// means NewWebhookClient.
func NewWebhookNotifier(url, secret string, client *http.Client, logger *slog.Logger, recorder metrics.Recorder) *WebhookNotifier {
	if client == nil {
		client = NewWebhookClient()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &WebhookNotifier{
		url:     url,
		secret:  secret,
		client:  client,
		delays:  webhookRetryDelays,
		logger:  logger.With("component", "revalidate"),
		metrics: recorder,
		now:     time.Now,
	}
}

// Stale delivers all distinct paths in one request. It returns immediately.
func (n *WebhookNotifier) Stale(ctx context.Context, paths ...string) {
	paths = dedupe(paths)
	if len(paths) == 0 {
		return
	}

	ctx = context.WithoutCancel(ctx)
	body, err := json.Marshal(WebhookPayload{Paths: paths, At: n.now().UTC()})
	if err != nil {
		n.logger.Error("encode webhook payload", "error", err)
		n.count("failed", len(paths))
		return
	}
	deliveryID := uuid.NewString()

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()

		err := n.deliver(ctx, deliveryID, body)
		if err != nil {
			n.logger.Warn("webhook delivery failed", "delivery_id", deliveryID, "paths", paths, "error", err)
			n.count("failed", len(paths))
			return
		}
		n.count("published", len(paths))
	}()
}

// Wait blocks until in-flight deliveries finish. Call during shutdown.
func (n *WebhookNotifier) Wait() {
	n.wg.Wait()
}

func (n *WebhookNotifier) count(status string, paths int) {
	for range paths {
		n.metrics.IncStaleNotification(status)
	}
}

// permanentError marks a response that retrying cannot fix.
type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

func (n *WebhookNotifier) deliver(ctx context.Context, deliveryID string, body []byte) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = n.attempt(ctx, deliveryID, body)
		var permanent *permanentError
		if err == nil || errors.As(err, &permanent) || attempt >= len(n.delays) {
			return err
		}

		n.logger.Debug("retrying webhook delivery", "delivery_id", deliveryID, "attempt", attempt+1, "error", err)
		select {
		case <-time.After(jitter(n.delays[attempt])):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (n *WebhookNotifier) attempt(ctx context.Context, deliveryID string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return &permanentError{err: fmt.Errorf("build request: %w", err)}
	}

	ts := n.now().Unix()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "balcao-revalidate/1.0")
	req.Header.Set(HeaderSignature, Sign(n.secret, ts, body))
	req.Header.Set(HeaderTimestamp, strconv.FormatInt(ts, 10))
	req.Header.Set(HeaderDeliveryID, deliveryID)

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusRequestTimeout, resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("receiver busy: status %d", resp.StatusCode)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return &permanentError{err: fmt.Errorf("receiver rejected delivery: status %d", resp.StatusCode)}
	default:
		return fmt.Errorf("receiver error: status %d", resp.StatusCode)
	}
}

func jitter(base time.Duration) time.Duration {
	spread := float64(base) * jitterFactor
	return time.Duration(float64(base) + (rand.Float64()*2-1)*spread)
}

// Multi fans a notification out to several notifiers.
type Multi []Notifier

// Stale notifies every member.
func (m Multi) Stale(ctx context.Context, paths ...string) {
	for _, n := range m {
		n.Stale(ctx, paths...)
	}
}
