package types

import (
	"errors"
	"testing"
)

func TestSimpleErrorClassifierClassifyError(t *testing.T) {
	classifier := NewSimpleErrorClassifier()

	cases := []struct {
		name string
		err  error
		want FailureReason
	}{
		{
			name: "auth",
			err:  errors.New("invalid API key provided"),
			want: FailureReasonAuth,
		},
		{
			name: "rate limit",
			err:  errors.New("429 too many requests"),
			want: FailureReasonRateLimit,
		},
		{
			name: "telegram flood wait",
			err:  errors.New("Too Many Requests: retry after 31"),
			want: FailureReasonRateLimit,
		},
		{
			name: "timeout",
			err:  errors.New("context deadline exceeded"),
			want: FailureReasonTimeout,
		},
		{
			name: "network",
			err:  errors.New("dial tcp: connection refused"),
			want: FailureReasonNetwork,
		},
		{
			name: "unknown",
			err:  errors.New("random backend failure"),
			want: FailureReasonUnknown,
		},
		{
			name: "nil error",
			err:  nil,
			want: FailureReasonUnknown,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := classifier.ClassifyError(tc.err)
			if got != tc.want {
				t.Fatalf("expected reason %q, got %q", tc.want, got)
			}
		})
	}
}

func TestSimpleErrorClassifierIsTransient(t *testing.T) {
	classifier := NewSimpleErrorClassifier()

	if classifier.IsTransient(nil) {
		t.Fatalf("nil error should not be transient")
	}
	if !classifier.IsTransient(errors.New("502 bad gateway")) {
		t.Fatalf("network errors should be transient")
	}
	if classifier.IsTransient(errors.New("401 unauthorized")) {
		t.Fatalf("auth errors should not be transient")
	}
}

func TestSimpleErrorClassifierPrecedence(t *testing.T) {
	classifier := NewSimpleErrorClassifier()

	// Both rate-limit and auth keywords exist; rate limit wins so callers retry.
	err := errors.New("401 unauthorized and rate limit exceeded")
	got := classifier.ClassifyError(err)
	if got != FailureReasonRateLimit {
		t.Fatalf("expected rate-limit precedence, got %q", got)
	}
}
