package model

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorKind(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{&NetworkError{Op: "GET /stations", Err: errors.New("refused")}, "network"},
		{&DecodeError{Op: "GET /stations", Err: errors.New("bad json")}, "decode"},
		{&NotFoundError{Kind: "charging session", ID: "s1"}, "not_found"},
		{&ValidationError{Reason: "please choose a connector"}, "validation"},
		{errors.New("boom"), "unknown"},
		{fmt.Errorf("wrapped: %w", &NetworkError{Op: "op", Err: errors.New("x")}), "network"},
	}
	for _, tc := range cases {
		if got := ErrorKind(tc.err); got != tc.want {
			t.Errorf("ErrorKind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestNetworkErrorUnwrap(t *testing.T) {
	inner := errors.New("connection reset")
	err := fmt.Errorf("fetch: %w", &NetworkError{Op: "GET /stations", Err: inner})
	if !errors.Is(err, inner) {
		t.Error("inner error lost through wrapping")
	}
}
