package services_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"ytharvest/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrTransient, "discovery", "search", "request failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"discovery", "search", "request failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarkerAndDetail(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient default marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %q", err.Error())
	}
}

func TestIsFatal(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"configuration", services.Wrap(services.ErrConfiguration, "config", "", "missing key", nil), true},
		{"missing input", services.Wrap(services.ErrMissingInput, "enrich", "load", "", nil), true},
		{"missing resource", services.Wrap(services.ErrMissingResource, "enrich", "uploads", "", nil), false},
		{"transient", fmt.Errorf("outer: %w", services.ErrTransient), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := services.IsFatal(tc.err); got != tc.want {
				t.Fatalf("IsFatal(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestKindPrefersRetriesExhausted(t *testing.T) {
	err := fmt.Errorf("%w: %w", services.ErrRetriesExhausted, services.ErrTransient)
	if kind := services.Kind(err); kind != "retries_exhausted" {
		t.Fatalf("expected retries_exhausted, got %q", kind)
	}
	if kind := services.Kind(services.ErrProtocolViolation); kind != "protocol_violation" {
		t.Fatalf("expected protocol_violation, got %q", kind)
	}
	if kind := services.Kind(errors.New("x")); kind != "other" {
		t.Fatalf("expected other, got %q", kind)
	}
	if kind := services.Kind(nil); kind != "none" {
		t.Fatalf("expected none, got %q", kind)
	}
}
