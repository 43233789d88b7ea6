package validation

import (
	"strings"
	"testing"
)

func TestValidateCommunityName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		ok    bool
	}{
		{name: "simple", input: "golang", ok: true},
		{name: "mixed case kept", input: "GoLang", ok: true},
		{name: "with hyphen and digit", input: "pc-gaming-2", ok: true},
		{name: "single character", input: "c", ok: true},
		{name: "empty", input: "", ok: false},
		{name: "maximum length", input: strings.Repeat("a", 40), ok: true},
		{name: "too long", input: strings.Repeat("a", 41), ok: false},
		{name: "space", input: "pc gaming", ok: false},
		{name: "symbol", input: "pc!gaming", ok: false},
		{name: "reserved", input: "Feed", ok: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateCommunityName(tc.input)
			if tc.ok && err != nil {
				t.Fatalf("expected valid name, got error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatalf("expected invalid name, got nil error")
			}
		})
	}
}

func TestValidateUsername(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		ok    bool
	}{
		{"ada", true},
		{"ada_lovelace-1", true},
		{"ab", false},
		{strings.Repeat("x", 18), true},
		{strings.Repeat("x", 19), false},
		{"ada lovelace", false},
	}

	for _, tc := range tests {
		err := ValidateUsername(tc.input)
		if tc.ok != (err == nil) {
			t.Errorf("ValidateUsername(%q) = %v, want ok=%v", tc.input, err, tc.ok)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	if err := ValidatePassword("short"); err == nil {
		t.Fatal("expected error for short password")
	}
	if err := ValidatePassword(strings.Repeat("p", 31)); err == nil {
		t.Fatal("expected error for long password")
	}
	if err := ValidatePassword("correct-horse"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()

	if err := ValidateEmail("ada@example.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateEmail("not-an-email"); err == nil {
		t.Fatal("expected error for malformed email")
	}
}

func TestContentLimits(t *testing.T) {
	t.Parallel()

	if err := ValidatePostInput("Hello", "world"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidatePostInput("   ", "world"); err == nil {
		t.Fatal("expected error for blank title")
	}
	if err := ValidatePostInput("Hello", ""); err != nil {
		t.Fatalf("empty body should be allowed: %v", err)
	}
	if err := ValidatePostInput("Hello", strings.Repeat("c", 1001)); err == nil {
		t.Fatal("expected error for long content")
	}
	if err := ValidateComment(strings.Repeat("c", 751)); err == nil {
		t.Fatal("expected error for long comment")
	}
	if err := ValidateBio(strings.Repeat("b", 51)); err == nil {
		t.Fatal("expected error for long bio")
	}
	if err := ValidateDescription(""); err != nil {
		t.Fatalf("empty description should be allowed: %v", err)
	}
}
