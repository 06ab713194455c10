package username

import (
	"context"
	"errors"
	"strings"
	"testing"

	apperrors "github.com/louisbranch/scholarflow/internal/platform/errors"
)

func TestBase(t *testing.T) {
	cases := []struct {
		first, last string
		want        string
	}{
		{"Ada", "Lovelace", "ada-lovelace"},
		{"Mary Jane", "van  der Berg", "mary-jane-van-der-berg"},
		{"José", "Núñez", "jose-nunez"},
		{"Zoë", "O'Brien", "zoe-obrien"},
		{"  ", "", Fallback},
		{"李", "王", Fallback},
		{"-Anne-", "--Smith", "anne-smith"},
	}
	for _, tc := range cases {
		if got := Base(tc.first, tc.last); got != tc.want {
			t.Fatalf("Base(%q, %q) = %q, want %q", tc.first, tc.last, got, tc.want)
		}
	}
}

func TestBaseTruncatesLongNames(t *testing.T) {
	got := Base(strings.Repeat("a", 40), strings.Repeat("b", 40))
	if len(got) > maxBaseLength {
		t.Fatalf("len = %d, want <= %d", len(got), maxBaseLength)
	}
	if strings.HasSuffix(got, "-") {
		t.Fatalf("base %q ends with hyphen", got)
	}
}

func TestAllocateReturnsBaseWhenFree(t *testing.T) {
	got, err := Allocate(context.Background(), "ada-lovelace", func(context.Context, string) (bool, error) { return false, nil })
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if got != "ada-lovelace" {
		t.Fatalf("username = %q, want ada-lovelace", got)
	}
}

func TestAllocateAppendsCounter(t *testing.T) {
	taken := map[string]bool{"ada-lovelace": true, "ada-lovelace-1": true, "ada-lovelace-2": true}
	var checked []string
	got, err := Allocate(context.Background(), "ada-lovelace", func(_ context.Context, candidate string) (bool, error) {
		checked = append(checked, candidate)
		return taken[candidate], nil
	})
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if got != "ada-lovelace-3" {
		t.Fatalf("username = %q, want ada-lovelace-3", got)
	}
	if len(checked) != 4 {
		t.Fatalf("checked %v, want four candidates", checked)
	}
}

func TestAllocateStopsAfterMaxAttempts(t *testing.T) {
	calls := 0
	_, err := Allocate(context.Background(), "busy", func(context.Context, string) (bool, error) {
		calls++
		return true, nil
	})
	if !apperrors.HasCode(err, apperrors.CodeUsernameExhausted) {
		t.Fatalf("err = %v, want exhausted", err)
	}
	if calls != MaxAttempts {
		t.Fatalf("calls = %d, want %d", calls, MaxAttempts)
	}
}

func TestAllocatePropagatesLookupErrors(t *testing.T) {
	boom := errors.New("db down")
	_, err := Allocate(context.Background(), "ada", func(context.Context, string) (bool, error) { return false, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped lookup error", err)
	}
}

func TestAllocateHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Allocate(ctx, "ada", func(context.Context, string) (bool, error) { return true, nil })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestCanonicalize(t *testing.T) {
	got, err := Canonicalize("  Ada-Lovelace-2 ")
	if err != nil {
		t.Fatalf("canonicalize: %v", err)
	}
	if got != "ada-lovelace-2" {
		t.Fatalf("canonical = %q, want ada-lovelace-2", got)
	}

	for _, input := range []string{"", "josé", "-lead", "has space", "dot.name", strings.Repeat("a", maxLength+1)} {
		if _, err := Canonicalize(input); !apperrors.HasCode(err, apperrors.CodeUsernameInvalid) {
			t.Fatalf("Canonicalize(%q) err = %v, want invalid", input, err)
		}
	}
}
