package dispatch

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifyRateLimitSignals(t *testing.T) {
	cases := []struct {
		err  error
		want Class
	}{
		{errors.New("gemini status 429"), Retryable},
		{errors.New("Rate Limit exceeded"), Retryable},
		{errors.New("RESOURCE_EXHAUSTED: try later"), Retryable},
		{errors.New("daily quota reached"), Retryable},
		{fmt.Errorf("invoke gemini: %w", errors.New("quota exceeded")), Retryable},
		{errors.New("gemini status 500: internal"), Fatal},
		{errors.New("invalid api key"), Fatal},
		{errors.New("connection refused"), Fatal},
	}
	for _, tc := range cases {
		if got := Classify(tc.err); got != tc.want {
			t.Errorf("Classify(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}
