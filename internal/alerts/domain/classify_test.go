package domain

import (
	"strings"
	"testing"
)

func TestClassifyFillBoundaries(t *testing.T) {
	policy := DefaultPolicy()

	tests := []struct {
		name     string
		fill     float64
		wantKind Kind
		wantPrio Priority
		wantOK   bool
	}{
		{"zero fill is out of stock", 0, KindOutOfStock, PriorityCritical, true},
		{"negative fill is out of stock", -3.5, KindOutOfStock, PriorityCritical, true},
		{"just above zero is critical", 0.1, KindCriticalStock, PriorityHigh, true},
		{"exactly 10 is critical", 10, KindCriticalStock, PriorityHigh, true},
		{"just above 10 is medium", 10.0001, KindMediumStock, PriorityMedium, true},
		{"exactly 25 is medium", 25, KindMediumStock, PriorityMedium, true},
		{"just above 25 is low", 25.0001, KindLowStock, PriorityLow, true},
		{"exactly 50 is low", 50, KindLowStock, PriorityLow, true},
		{"just above 50 is no alert", 50.0001, "", "", false},
		{"full rack is no alert", 100, "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, prio, ok := policy.ClassifyFill(tt.fill)
			if ok != tt.wantOK {
				t.Fatalf("ClassifyFill(%v) ok = %v, want %v", tt.fill, ok, tt.wantOK)
			}
			if kind != tt.wantKind {
				t.Fatalf("ClassifyFill(%v) kind = %q, want %q", tt.fill, kind, tt.wantKind)
			}
			if prio != tt.wantPrio {
				t.Fatalf("ClassifyFill(%v) priority = %q, want %q", tt.fill, prio, tt.wantPrio)
			}
		})
	}
}

func TestClassifyFillIsDeterministic(t *testing.T) {
	policy := DefaultPolicy()
	for i := 0; i < 5; i++ {
		kind, prio, ok := policy.ClassifyFill(7.3)
		if !ok || kind != KindCriticalStock || prio != PriorityHigh {
			t.Fatalf("run %d: got (%q, %q, %v), want (critical_stock, high, true)", i, kind, prio, ok)
		}
	}
}

func TestBuildStockDecisionMessages(t *testing.T) {
	policy := DefaultPolicy()

	dec, ok := policy.BuildStockDecision("Oat Milk", "A1", "R2", 100)
	if !ok {
		t.Fatal("expected a decision for a fully empty rack")
	}
	if dec.Kind != KindOutOfStock {
		t.Fatalf("kind = %q, want out_of_stock", dec.Kind)
	}
	if !strings.Contains(dec.Message, "OUT OF STOCK at A1-R2") {
		t.Fatalf("out-of-stock message missing location: %q", dec.Message)
	}

	dec, ok = policy.BuildStockDecision("Oat Milk", "A1", "R2", 80)
	if !ok {
		t.Fatal("expected a decision at 20%% fill")
	}
	if dec.FillPercentage != 20 {
		t.Fatalf("fill = %v, want 20", dec.FillPercentage)
	}
	if !strings.Contains(dec.Message, "20.0% filled") {
		t.Fatalf("message should carry fill to one decimal: %q", dec.Message)
	}

	if _, ok := policy.BuildStockDecision("Oat Milk", "A1", "R2", 30); ok {
		t.Fatal("70%% fill should not produce a decision")
	}
}

func TestCustomThresholds(t *testing.T) {
	policy := Policy{
		Thresholds:        Thresholds{OutOfStock: 5, Critical: 15, Medium: 30, Low: 60},
		DisorderThreshold: 20,
	}

	kind, _, ok := policy.ClassifyFill(4)
	if !ok || kind != KindOutOfStock {
		t.Fatalf("fill 4 with raised cutoff: got (%q, %v), want out_of_stock", kind, ok)
	}
	if _, _, ok := policy.ClassifyFill(61); ok {
		t.Fatal("fill 61 above custom low cutoff should not alert")
	}
}

func TestPolicyValidate(t *testing.T) {
	bad := Policy{Thresholds: Thresholds{OutOfStock: 10, Critical: 10, Medium: 25, Low: 50}}
	if err := bad.Validate(); err == nil {
		t.Fatal("equal adjacent thresholds should fail validation")
	}
	if err := DefaultPolicy().Validate(); err != nil {
		t.Fatalf("default policy should validate, got %v", err)
	}
}
