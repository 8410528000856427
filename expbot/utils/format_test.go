package utils

import (
	"testing"
	"time"
)

func TestProgressBar(t *testing.T) {
	tests := []struct {
		percent int
		want    string
	}{
		{percent: 0, want: "[□□□□□□□□□□] 0%"},
		{percent: 48, want: "[■■■■□□□□□□] 48%"},
		{percent: 100, want: "[■■■■■■■■■■] 100%"},
		{percent: 150, want: "[■■■■■■■■■■] 100%"},
		{percent: -3, want: "[□□□□□□□□□□] 0%"},
	}
	for _, tt := range tests {
		if got := ProgressBar(tt.percent); got != tt.want {
			t.Errorf("ProgressBar(%d) = %q, want %q", tt.percent, got, tt.want)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{in: 0, want: "0"},
		{in: 999, want: "999"},
		{in: 1000, want: "1,000"},
		{in: 1234567, want: "1,234,567"},
		{in: -45000, want: "-45,000"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if got := FormatExp(1500); got != "1,500 EXP" {
		t.Errorf("FormatExp = %q", got)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{in: 30 * time.Second, want: "30s"},
		{in: 45 * time.Minute, want: "45m"},
		{in: 2*time.Hour + 5*time.Minute, want: "2h 5m"},
		{in: 26 * time.Hour, want: "1d 2h"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.in); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
