package domain

import (
	"strings"
	"testing"
)

func TestIsMisplaced(t *testing.T) {
	policy := DefaultPolicy()

	tests := []struct {
		name     string
		detected string
		expected string
		disorder float64
		want     bool
	}{
		{"partial label matches despite punctuation", "Coca Cola", "Coca-Cola Classic", 5, false},
		{"different product is misplaced", "Pepsi", "Coca-Cola Classic", 5, true},
		{"case-insensitive exact match", "OAT MILK", "Oat Milk", 0, false},
		{"expected contained in detected", "Oat Milk 1L Carton", "Oat Milk", 0, false},
		{"empty label low disorder is no signal", "", "Oat Milk", 10, false},
		{"empty label high disorder flags disorder", "", "Oat Milk", 35, true},
		{"matching label but high disorder still flags", "Oat Milk", "Oat Milk", 45, true},
		{"disorder exactly at threshold does not flag", "Oat Milk", "Oat Milk", 20, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := policy.IsMisplaced(tt.detected, tt.expected, tt.disorder)
			if got != tt.want {
				t.Fatalf("IsMisplaced(%q, %q, %v) = %v, want %v",
					tt.detected, tt.expected, tt.disorder, got, tt.want)
			}
		})
	}
}

func TestIsMisplacedConfigurableThreshold(t *testing.T) {
	policy := DefaultPolicy()
	policy.DisorderThreshold = 50

	if policy.IsMisplaced("Oat Milk", "Oat Milk", 35) {
		t.Fatal("disorder 35 under a raised threshold of 50 should not flag")
	}
	if !policy.IsMisplaced("Oat Milk", "Oat Milk", 51) {
		t.Fatal("disorder 51 over a raised threshold of 50 should flag")
	}
}

func TestBuildMisplacementDecision(t *testing.T) {
	loc := "B2-R1"
	dec := BuildMisplacementDecision("Pepsi", "Coca-Cola Classic", "A1", "R3", 12.5, &loc)

	if dec.Title != "🔄 MISPLACED: Pepsi at A1-R3" {
		t.Fatalf("unexpected title: %q", dec.Title)
	}
	if !strings.Contains(dec.Message, "Expected: 'Coca-Cola Classic'") {
		t.Fatalf("message missing expected product: %q", dec.Message)
	}
	if !strings.Contains(dec.Message, "Correct location: B2-R1") {
		t.Fatalf("message missing correct location: %q", dec.Message)
	}
	if !strings.Contains(dec.Message, "Disorder level: 12.5%") {
		t.Fatalf("message missing disorder level: %q", dec.Message)
	}
}

func TestBuildMisplacementDecisionWithoutLocation(t *testing.T) {
	dec := BuildMisplacementDecision("", "Oat Milk", "A1", "R3", 40, nil)

	if !strings.Contains(dec.Title, "unknown item") {
		t.Fatalf("blank label should render as unknown item: %q", dec.Title)
	}
	if strings.Contains(dec.Message, "Correct location") {
		t.Fatalf("message should omit correct location when none found: %q", dec.Message)
	}
}

func TestClampPercent(t *testing.T) {
	if got := ClampPercent(-5); got != 0 {
		t.Fatalf("ClampPercent(-5) = %v, want 0", got)
	}
	if got := ClampPercent(130); got != 100 {
		t.Fatalf("ClampPercent(130) = %v, want 100", got)
	}
	if got := ClampPercent(42.5); got != 42.5 {
		t.Fatalf("ClampPercent(42.5) = %v, want 42.5", got)
	}
}
