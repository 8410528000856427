package commands

import (
	"fmt"
	"strings"
	"testing"

	"github.com/impulse/expbot/expbot/progression"
)

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "wrapped validation error", err: fmt.Errorf("grant 0: %w", progression.ErrInvalidAmount), want: "Invalid input: amount must be a positive integer."},
		{name: "bare validation error", err: progression.ErrInvalidDuration, want: "Invalid input: " + progression.ErrInvalidDuration.Error() + "."},
		{name: "closed engine", err: progression.ErrEngineClosed, want: "The EXP system is shutting down, try again shortly."},
		{name: "unknown", err: fmt.Errorf("boom"), want: "Something went wrong, please try again later."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := userMessage(tt.err); got != tt.want {
				t.Fatalf("userMessage = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatLadderPage(t *testing.T) {
	page := formatLadderPage([]progression.Standing{
		{Rank: 1, UserID: "111", Exp: 1500, Level: 9, NextLevelExp: 1043},
		{Rank: 2, UserID: "222", Exp: 20, Level: 1, NextLevelExp: 36},
	})

	lines := strings.Split(strings.TrimSpace(page), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines:\n%s", len(lines), page)
	}
	if !strings.HasPrefix(lines[0], "**#1** <@111> | Level 9 | 1,500 EXP") {
		t.Fatalf("unexpected first line %q", lines[0])
	}
	if !strings.Contains(lines[1], "next level at 36") {
		t.Fatalf("unexpected second line %q", lines[1])
	}
}

func TestCommandsAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, cmd := range Commands {
		name := cmd.CommandName()
		if seen[name] {
			t.Fatalf("duplicate command %s", name)
		}
		seen[name] = true
	}
	if len(seen) != 8 {
		t.Fatalf("expected 8 commands, got %d", len(seen))
	}
}
