package service

import (
	"context"
	"testing"

	"shelfsense_backend/internal/alerts/domain"
)

func seedAlert(f *engineFixture, status domain.Status, priority domain.Priority, kind domain.Kind, assignee string) int64 {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	id := f.store.nextID
	f.store.nextID++
	alert := domain.Alert{
		ID: id, Kind: kind, Priority: priority, Status: status,
		ShelfName: "A1", RackName: "R1", CreatedBy: "system",
	}
	if assignee != "" {
		alert.AssignedStaffID = &assignee
	}
	f.store.alerts[id] = alert
	return id
}

func TestAcknowledgeActiveAlert(t *testing.T) {
	f := newEngineFixture()
	id := seedAlert(f, domain.StatusActive, domain.PriorityHigh, domain.KindCriticalStock, "E201")

	done, err := f.service.Acknowledge(context.Background(), id, "E201", "on my way")
	if err != nil {
		t.Fatalf("acknowledge failed: %v", err)
	}
	if !done {
		t.Fatal("expected acknowledge to apply")
	}

	alert, _ := f.store.GetAlert(context.Background(), id)
	if alert.Status != domain.StatusAcknowledged {
		t.Fatalf("expected acknowledged, got %s", alert.Status)
	}
	if alert.AcknowledgedAt == nil {
		t.Fatal("expected acknowledgedAt to be set")
	}

	history, _ := f.store.History(context.Background(), id)
	if len(history) != 1 || history[0].Action != domain.ActionAcknowledged {
		t.Fatalf("expected acknowledged history entry, got %+v", history)
	}
	if history[0].PerformedBy == nil || *history[0].PerformedBy != "E201" {
		t.Fatalf("expected performer E201, got %v", history[0].PerformedBy)
	}
}

func TestAcknowledgePendingAlert(t *testing.T) {
	f := newEngineFixture()
	id := seedAlert(f, domain.StatusPending, domain.PriorityLow, domain.KindMisplacedItem, "")

	done, err := f.service.Acknowledge(context.Background(), id, "E100", "")
	if err != nil || !done {
		t.Fatalf("pending alerts are acknowledgeable, got done=%v err=%v", done, err)
	}
}

func TestAcknowledgeIneligibleStates(t *testing.T) {
	f := newEngineFixture()

	for _, status := range []domain.Status{domain.StatusAcknowledged, domain.StatusResolved} {
		id := seedAlert(f, status, domain.PriorityHigh, domain.KindCriticalStock, "")
		done, err := f.service.Acknowledge(context.Background(), id, "E201", "")
		if err != nil {
			t.Fatalf("status %s: unexpected error %v", status, err)
		}
		if done {
			t.Fatalf("status %s must not be acknowledgeable", status)
		}
	}
}

func TestAcknowledgeMissingAlert(t *testing.T) {
	f := newEngineFixture()

	done, err := f.service.Acknowledge(context.Background(), 9999, "E201", "")
	if err != nil {
		t.Fatalf("missing alert is not an error: %v", err)
	}
	if done {
		t.Fatal("missing alert must report not-applicable")
	}
}

func TestResolveFromEachEligibleState(t *testing.T) {
	f := newEngineFixture()

	for _, status := range []domain.Status{domain.StatusActive, domain.StatusAcknowledged, domain.StatusPending} {
		id := seedAlert(f, status, domain.PriorityMedium, domain.KindMediumStock, "")
		done, err := f.service.Resolve(context.Background(), id, "E201", "restocked")
		if err != nil || !done {
			t.Fatalf("status %s: expected resolve to apply, got done=%v err=%v", status, done, err)
		}

		alert, _ := f.store.GetAlert(context.Background(), id)
		if alert.Status != domain.StatusResolved || alert.ResolvedAt == nil {
			t.Fatalf("status %s: expected resolved with timestamp, got %+v", status, alert)
		}
	}
}

func TestResolveAlreadyResolved(t *testing.T) {
	f := newEngineFixture()
	id := seedAlert(f, domain.StatusActive, domain.PriorityHigh, domain.KindCriticalStock, "")

	if done, _ := f.service.Resolve(context.Background(), id, "E201", ""); !done {
		t.Fatal("first resolve must apply")
	}
	done, err := f.service.Resolve(context.Background(), id, "E202", "")
	if err != nil {
		t.Fatalf("double resolve is not an error: %v", err)
	}
	if done {
		t.Fatal("second resolve must report not-applicable")
	}

	history, _ := f.store.History(context.Background(), id)
	if len(history) != 1 {
		t.Fatalf("ineligible transition must write nothing, got %d entries", len(history))
	}
}

func TestResolvedSlotFreesDedupe(t *testing.T) {
	f := newEngineFixture()
	batch := singleRackBatch("A1", emptyRack("R1", "Coca-Cola Classic", 100))

	first := f.service.ProcessBatch(context.Background(), batch)
	if _, err := f.service.Resolve(context.Background(), first.Alerts[0].ID, "E201", ""); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	second := f.service.ProcessBatch(context.Background(), batch)
	if second.CreatedCount != 1 {
		t.Fatalf("resolved slot must allow a fresh alert, got %+v", second)
	}
	if second.Alerts[0].ID == first.Alerts[0].ID {
		t.Fatal("expected a new alert row, not a revival of the resolved one")
	}
}

func TestGetActiveManagerSeesAll(t *testing.T) {
	f := newEngineFixture()
	seedAlert(f, domain.StatusActive, domain.PriorityCritical, domain.KindOutOfStock, "E201")
	seedAlert(f, domain.StatusActive, domain.PriorityLow, domain.KindLowStock, "E202")
	seedAlert(f, domain.StatusPending, domain.PriorityLow, domain.KindMisplacedItem, "")

	alerts, err := f.service.GetActive(context.Background(), "E100")
	if err != nil {
		t.Fatalf("manager listing failed: %v", err)
	}
	if len(alerts) != 2 {
		t.Fatalf("expected the 2 active alerts, got %d", len(alerts))
	}
	if alerts[0].Priority != domain.PriorityCritical {
		t.Fatalf("expected priority ordering, got %s first", alerts[0].Priority)
	}
}

func TestGetActiveStaffNarrowedToOwn(t *testing.T) {
	f := newEngineFixture()
	mine := seedAlert(f, domain.StatusActive, domain.PriorityHigh, domain.KindCriticalStock, "E201")
	seedAlert(f, domain.StatusActive, domain.PriorityHigh, domain.KindCriticalStock, "E202")

	alerts, err := f.service.GetActive(context.Background(), "E201")
	if err != nil {
		t.Fatalf("staff listing failed: %v", err)
	}
	if len(alerts) != 1 || alerts[0].ID != mine {
		t.Fatalf("expected only the caller's alert, got %+v", alerts)
	}
}

func TestStatisticsCountsActiveOnly(t *testing.T) {
	f := newEngineFixture()
	seedAlert(f, domain.StatusActive, domain.PriorityCritical, domain.KindOutOfStock, "")
	seedAlert(f, domain.StatusActive, domain.PriorityHigh, domain.KindCriticalStock, "")
	seedAlert(f, domain.StatusActive, domain.PriorityMedium, domain.KindMisplacedItem, "")
	seedAlert(f, domain.StatusAcknowledged, domain.PriorityCritical, domain.KindOutOfStock, "")
	seedAlert(f, domain.StatusResolved, domain.PriorityHigh, domain.KindCriticalStock, "")

	stats, err := f.service.Statistics(context.Background())
	if err != nil {
		t.Fatalf("statistics failed: %v", err)
	}
	if stats.TotalActive != 3 {
		t.Fatalf("expected 3 active, got %d", stats.TotalActive)
	}
	if stats.CriticalAlerts != 1 || stats.HighAlerts != 1 {
		t.Fatalf("unexpected priority counts: %+v", stats)
	}
	if stats.StockAlerts != 2 || stats.MisplacementAlerts != 1 {
		t.Fatalf("unexpected bucket counts: %+v", stats)
	}
}
