package push

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/AjianNie/TelegramForwarder2/types"
)

func TestOpenParsesSchemes(t *testing.T) {
	d := NewDispatcher()

	cases := []string{
		"slack://xoxb-token@general",
		"discord://123456/abcdef",
		"ntfy://ntfy.sh/mytopic",
		"ntfys://ntfy.sh/mytopic",
		"bark://api.day.app/devicekey",
		"https://example.com/hook",
	}
	for _, conn := range cases {
		if _, err := d.Open(conn); err != nil {
			t.Fatalf("Open(%q) failed: %v", conn, err)
		}
	}
}

func TestOpenRejectsBadConnections(t *testing.T) {
	d := NewDispatcher()

	cases := []string{
		"",
		"gopher://example.com/x",
		"slack://general",    // 缺 token
		"discord://123456",   // 缺 webhook token
		"ntfy://ntfy.sh",     // 缺 topic
		"bark://api.day.app", // 缺 device key
	}
	for _, conn := range cases {
		if _, err := d.Open(conn); err == nil {
			t.Fatalf("Open(%q) should fail", conn)
		}
	}
}

type countingNotifier struct {
	calls int
	errs  []error
}

func (c *countingNotifier) Notify(ctx context.Context, body string, attachments []string) error {
	c.calls++
	if c.calls <= len(c.errs) {
		return c.errs[c.calls-1]
	}
	return nil
}

func TestRetryOnTransientError(t *testing.T) {
	inner := &countingNotifier{errs: []error{errors.New("connection timeout")}}
	r := &retryingNotifier{inner: inner, classifier: types.NewSimpleErrorClassifier()}

	if err := r.Notify(context.Background(), "hello", nil); err != nil {
		t.Fatalf("expected recovery after retry, got %v", err)
	}
	if inner.calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", inner.calls)
	}
}

func TestNoRetryOnPermanentError(t *testing.T) {
	permanent := errors.New("401 unauthorized")
	inner := &countingNotifier{errs: []error{permanent, permanent}}
	r := &retryingNotifier{inner: inner, classifier: types.NewSimpleErrorClassifier()}

	if err := r.Notify(context.Background(), "hello", nil); err == nil {
		t.Fatalf("expected error")
	}
	if inner.calls != 1 {
		t.Fatalf("permanent error must not be retried, got %d attempts", inner.calls)
	}
}

func TestWebhookDeliversJSON(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf, _ := io.ReadAll(r.Body)
		got = string(buf)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	dst := newWebhookDestination(srv.URL)
	if err := dst.Notify(context.Background(), "news update", []string{"/tmp/a.jpg"}); err != nil {
		t.Fatalf("notify failed: %v", err)
	}
	if !strings.Contains(got, "news update") || !strings.Contains(got, "a.jpg") {
		t.Fatalf("unexpected payload %q", got)
	}
}

func TestWebhookRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	dst := newWebhookDestination(srv.URL)
	if err := dst.Notify(context.Background(), "x", nil); err == nil {
		t.Fatalf("expected error on 502 response")
	}
}
