package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestIsTransient(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("Rate limit exceeded"), true},
		{errors.New("got status 429 from upstream"), true},
		{errors.New("request timeout"), true},
		{context.DeadlineExceeded, true},
		{fmt.Errorf("wrapping: %w", context.DeadlineExceeded), true},
		{markTransient(errors.New("anything")), true},
		{errors.New("invalid api key"), false},
		{errors.New("model not found"), false},
	}
	for _, c := range cases {
		if got := IsTransient(c.err); got != c.want {
			t.Errorf("IsTransient(%v) = %v, want %v", c.err, got, c.want)
		}
	}
}

func TestTransientUnwrap(t *testing.T) {
	base := errors.New("base")
	wrapped := markTransient(base)
	if !errors.Is(wrapped, base) {
		t.Error("transient marker should unwrap to the original error")
	}
}
