package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"shelfsense_backend/internal/alerts/domain"
	"shelfsense_backend/platform/apperr"
	"shelfsense_backend/platform/logger"
)

// fakeStore is an in-memory Store. Transactions stage their writes and only
// apply them on Commit so the all-or-nothing contract is observable.
type fakeStore struct {
	mu      sync.Mutex
	nextID  int64
	alerts  map[int64]domain.Alert
	history []domain.HistoryEntry

	beginErr     error
	commitErr    error
	notifiedSets map[int64][]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		nextID:       1,
		alerts:       make(map[int64]domain.Alert),
		notifiedSets: make(map[int64][]string),
	}
}

func (f *fakeStore) Begin(ctx context.Context) (Tx, error) {
	if f.beginErr != nil {
		return nil, f.beginErr
	}
	return &fakeTx{store: f, staged: make(map[int64]domain.Alert)}, nil
}

func (f *fakeStore) GetAlert(ctx context.Context, id int64) (*domain.Alert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	alert, ok := f.alerts[id]
	if !ok {
		return nil, apperr.NotFound("alert not found")
	}
	return &alert, nil
}

func (f *fakeStore) ListActive(ctx context.Context, assignedTo string) ([]domain.Alert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Alert
	for _, alert := range f.alerts {
		if alert.Status != domain.StatusActive {
			continue
		}
		if assignedTo != "" && (alert.AssignedStaffID == nil || *alert.AssignedStaffID != assignedTo) {
			continue
		}
		out = append(out, alert)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority.Rank() != out[j].Priority.Rank() {
			return out[i].Priority.Rank() > out[j].Priority.Rank()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (f *fakeStore) Acknowledge(ctx context.Context, id int64, employeeID string, notes *string) (*domain.Alert, error) {
	return f.transition(id, employeeID, notes, domain.StatusAcknowledged,
		[]domain.Status{domain.StatusActive, domain.StatusPending}, domain.ActionAcknowledged)
}

func (f *fakeStore) Resolve(ctx context.Context, id int64, employeeID string, notes *string) (*domain.Alert, error) {
	return f.transition(id, employeeID, notes, domain.StatusResolved,
		[]domain.Status{domain.StatusActive, domain.StatusAcknowledged, domain.StatusPending}, domain.ActionResolved)
}

func (f *fakeStore) transition(id int64, employeeID string, notes *string, to domain.Status, eligible []domain.Status, action domain.HistoryAction) (*domain.Alert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	alert, ok := f.alerts[id]
	if !ok {
		return nil, nil
	}
	allowed := false
	for _, status := range eligible {
		if alert.Status == status {
			allowed = true
		}
	}
	if !allowed {
		return nil, nil
	}

	now := time.Now().UTC()
	alert.Status = to
	alert.UpdatedAt = now
	if to == domain.StatusAcknowledged {
		alert.AcknowledgedAt = &now
	} else {
		alert.ResolvedAt = &now
	}
	f.alerts[id] = alert
	f.history = append(f.history, domain.HistoryEntry{
		AlertID:     id,
		Action:      action,
		PerformedBy: &employeeID,
		Notes:       notes,
		CreatedAt:   now,
	})
	return &alert, nil
}

func (f *fakeStore) Statistics(ctx context.Context) (domain.Stats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var stats domain.Stats
	for _, alert := range f.alerts {
		if alert.Status != domain.StatusActive {
			continue
		}
		stats.TotalActive++
		if alert.Priority == domain.PriorityCritical {
			stats.CriticalAlerts++
		}
		if alert.Priority == domain.PriorityHigh {
			stats.HighAlerts++
		}
		if alert.Kind.DedupeBucket() == domain.BucketStock {
			stats.StockAlerts++
		} else {
			stats.MisplacementAlerts++
		}
	}
	return stats, nil
}

func (f *fakeStore) History(ctx context.Context, alertID int64) ([]domain.HistoryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.HistoryEntry
	for i := len(f.history) - 1; i >= 0; i-- {
		if f.history[i].AlertID == alertID {
			out = append(out, f.history[i])
		}
	}
	return out, nil
}

func (f *fakeStore) SetNotified(ctx context.Context, id int64, staffIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notifiedSets[id] = staffIDs
	if alert, ok := f.alerts[id]; ok {
		alert.NotifiedStaffIDs = staffIDs
		f.alerts[id] = alert
	}
	return nil
}

// fakeTx stages writes and applies them to the store on Commit.
type fakeTx struct {
	store      *fakeStore
	staged     map[int64]domain.Alert
	history    []domain.HistoryEntry
	insertErrs []error
}

func (t *fakeTx) FindActiveByBucket(ctx context.Context, shelf, rack string, bucket domain.Bucket) (*domain.Alert, error) {
	for _, alert := range t.staged {
		if matchesSlot(alert, shelf, rack, bucket) {
			copied := alert
			return &copied, nil
		}
	}
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	for _, alert := range t.store.alerts {
		if matchesSlot(alert, shelf, rack, bucket) {
			copied := alert
			return &copied, nil
		}
	}
	return nil, nil
}

func matchesSlot(alert domain.Alert, shelf, rack string, bucket domain.Bucket) bool {
	if alert.Status != domain.StatusActive && alert.Status != domain.StatusPending {
		return false
	}
	return alert.ShelfName == shelf && alert.RackName == rack && alert.Kind.DedupeBucket() == bucket
}

func (t *fakeTx) InsertAlert(ctx context.Context, alert *domain.Alert) error {
	if len(t.insertErrs) > 0 {
		err := t.insertErrs[0]
		t.insertErrs = t.insertErrs[1:]
		if err != nil {
			return err
		}
	}
	t.store.mu.Lock()
	alert.ID = t.store.nextID
	t.store.nextID++
	t.store.mu.Unlock()

	now := time.Now().UTC()
	alert.CreatedAt = now
	alert.UpdatedAt = now
	t.staged[alert.ID] = *alert
	return nil
}

func (t *fakeTx) UpdateAlert(ctx context.Context, alert *domain.Alert) error {
	t.staged[alert.ID] = *alert
	return nil
}

func (t *fakeTx) AppendHistory(ctx context.Context, entry domain.HistoryEntry) error {
	entry.CreatedAt = time.Now().UTC()
	t.history = append(t.history, entry)
	return nil
}

func (t *fakeTx) Commit(ctx context.Context) error {
	if t.store.commitErr != nil {
		return t.store.commitErr
	}
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	for id, alert := range t.staged {
		t.store.alerts[id] = alert
	}
	t.store.history = append(t.store.history, t.history...)
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error { return nil }

// fakeCatalog keys entries by "shelf|rack".
type fakeCatalog struct {
	entries       map[string]CatalogEntry
	searchResults []CatalogEntry
	searchErr     error
}

func (c *fakeCatalog) Find(ctx context.Context, shelf, rack string) (*CatalogEntry, error) {
	entry, ok := c.entries[shelf+"|"+rack]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

func (c *fakeCatalog) SearchByName(ctx context.Context, substring, preferredCategory string) ([]CatalogEntry, error) {
	if c.searchErr != nil {
		return nil, c.searchErr
	}
	return c.searchResults, nil
}

type fakeAssignments struct {
	byShelf map[string]string
}

func (a *fakeAssignments) ActiveAssignee(ctx context.Context, shelf string) (string, error) {
	return a.byShelf[shelf], nil
}

type fakeDirectory struct {
	active   map[string]bool
	managers []string
}

func (d *fakeDirectory) IsActive(ctx context.Context, employeeID string) (bool, error) {
	return d.active[employeeID], nil
}

func (d *fakeDirectory) IsManager(ctx context.Context, employeeID string) (bool, error) {
	for _, id := range d.managers {
		if id == employeeID {
			return true, nil
		}
	}
	return false, nil
}

func (d *fakeDirectory) ActiveManagerIDs(ctx context.Context) ([]string, error) {
	return d.managers, nil
}

type fakeDispatcher struct {
	mu         sync.Mutex
	recipients []string
}

func (d *fakeDispatcher) Notify(ctx context.Context, recipientID string, alert domain.Alert) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.recipients = append(d.recipients, recipientID)
	return nil
}

func (d *fakeDispatcher) sorted() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := append([]string(nil), d.recipients...)
	sort.Strings(out)
	return out
}

type engineFixture struct {
	service     *Service
	store       *fakeStore
	catalog     *fakeCatalog
	assignments *fakeAssignments
	directory   *fakeDirectory
	dispatcher  *fakeDispatcher
}

func newEngineFixture() *engineFixture {
	store := newFakeStore()
	catalog := &fakeCatalog{entries: map[string]CatalogEntry{
		"A1|R1": {ShelfName: "A1", RackName: "R1", ProductName: "Coca-Cola Classic", Category: strPtr("beverages")},
		"A1|R2": {ShelfName: "A1", RackName: "R2", ProductName: "Lays Chips", Category: strPtr("snacks")},
		"A1|R3": {ShelfName: "A1", RackName: "R3", ProductName: "Oreo Cookies", Category: strPtr("snacks")},
	}}
	assignments := &fakeAssignments{byShelf: map[string]string{"A1": "E201"}}
	directory := &fakeDirectory{
		active:   map[string]bool{"E201": true, "E100": true, "E101": true},
		managers: []string{"E100", "E101"},
	}
	dispatcher := &fakeDispatcher{}

	svc := New(store, domain.DefaultPolicy(), logger.New("test"))
	svc.SetCatalog(catalog)
	svc.SetAssignments(assignments)
	svc.SetDirectory(directory)
	svc.SetDispatcher(dispatcher)

	return &engineFixture{
		service:     svc,
		store:       store,
		catalog:     catalog,
		assignments: assignments,
		directory:   directory,
		dispatcher:  dispatcher,
	}
}

func strPtr(s string) *string { return &s }

func emptyRack(rackID, item string, emptyPct float64) domain.RackObservation {
	return domain.RackObservation{
		RackID:        rackID,
		Item:          item,
		ClassCoverage: map[string]float64{domain.CoverageEmpty: emptyPct},
	}
}

func singleRackBatch(shelfID string, rack domain.RackObservation) domain.Batch {
	return domain.Batch{Shelves: []domain.ShelfObservation{{ShelfID: shelfID, Racks: []domain.RackObservation{rack}}}}
}

func TestProcessBatchCreatesStockAlert(t *testing.T) {
	f := newEngineFixture()

	result := f.service.ProcessBatch(context.Background(), singleRackBatch("A1", emptyRack("R1", "Coca-Cola Classic", 100)))

	if !result.Success {
		t.Fatalf("expected success, got errors %v", result.Errors)
	}
	if result.CreatedCount != 1 || result.UpdatedCount != 0 {
		t.Fatalf("expected 1 created / 0 updated, got %d / %d", result.CreatedCount, result.UpdatedCount)
	}

	alert := result.Alerts[0]
	if alert.Kind != domain.KindOutOfStock || alert.Priority != domain.PriorityCritical {
		t.Fatalf("expected out_of_stock/critical, got %s/%s", alert.Kind, alert.Priority)
	}
	if alert.Status != domain.StatusActive {
		t.Fatalf("expected active status, got %s", alert.Status)
	}
	if alert.AssignedStaffID == nil || *alert.AssignedStaffID != "E201" {
		t.Fatalf("expected assignment to E201, got %v", alert.AssignedStaffID)
	}
	if !strings.Contains(alert.Message, "OUT OF STOCK") {
		t.Fatalf("unexpected message %q", alert.Message)
	}

	history, _ := f.store.History(context.Background(), alert.ID)
	if len(history) != 1 || history[0].Action != domain.ActionCreated {
		t.Fatalf("expected one created history entry, got %+v", history)
	}
}

func TestProcessBatchIdempotentResubmission(t *testing.T) {
	f := newEngineFixture()
	batch := singleRackBatch("A1", emptyRack("R1", "Coca-Cola Classic", 95))

	first := f.service.ProcessBatch(context.Background(), batch)
	if first.CreatedCount != 1 {
		t.Fatalf("first pass: expected 1 created, got %d", first.CreatedCount)
	}

	second := f.service.ProcessBatch(context.Background(), batch)
	if !second.Success {
		t.Fatalf("second pass failed: %v", second.Errors)
	}
	if second.CreatedCount != 0 || second.UpdatedCount != 1 {
		t.Fatalf("second pass: expected 0 created / 1 updated, got %d / %d", second.CreatedCount, second.UpdatedCount)
	}
	if second.Alerts[0].ID != first.Alerts[0].ID {
		t.Fatalf("expected same alert to absorb the re-observation, got %d vs %d", second.Alerts[0].ID, first.Alerts[0].ID)
	}

	stats, _ := f.store.Statistics(context.Background())
	if stats.TotalActive != 1 {
		t.Fatalf("expected 1 active alert after resubmission, got %d", stats.TotalActive)
	}
}

func TestProcessBatchUpdateReclassifiesInPlace(t *testing.T) {
	f := newEngineFixture()

	first := f.service.ProcessBatch(context.Background(), singleRackBatch("A1", emptyRack("R1", "Coca-Cola Classic", 95)))
	if first.Alerts[0].Kind != domain.KindCriticalStock {
		t.Fatalf("expected critical_stock at 5%% fill, got %s", first.Alerts[0].Kind)
	}

	second := f.service.ProcessBatch(context.Background(), singleRackBatch("A1", emptyRack("R1", "Coca-Cola Classic", 60)))
	updated := second.Alerts[0]
	if updated.ID != first.Alerts[0].ID {
		t.Fatalf("expected update in place")
	}
	if updated.Kind != domain.KindLowStock || updated.Priority != domain.PriorityLow {
		t.Fatalf("expected reclassification to low_stock/low, got %s/%s", updated.Kind, updated.Priority)
	}
	if updated.FillPercentage == nil || *updated.FillPercentage != 40 {
		t.Fatalf("expected fill 40, got %v", updated.FillPercentage)
	}
}

func TestProcessBatchPartialFailure(t *testing.T) {
	f := newEngineFixture()

	batch := domain.Batch{Shelves: []domain.ShelfObservation{{
		ShelfID: "A1",
		Racks: []domain.RackObservation{
			emptyRack("R1", "Coca-Cola Classic", 100),
			emptyRack("", "Lays Chips", 100),
			emptyRack("R3", "Oreo Cookies", 100),
		},
	}}}

	result := f.service.ProcessBatch(context.Background(), batch)

	if !result.Success {
		t.Fatalf("per-unit failures must not fail the batch: %v", result.Errors)
	}
	if result.CreatedCount != 2 {
		t.Fatalf("expected 2 created, got %d", result.CreatedCount)
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "missing rack_id") {
		t.Fatalf("expected one missing rack_id warning, got %v", result.Errors)
	}

	stats, _ := f.store.Statistics(context.Background())
	if stats.TotalActive != 2 {
		t.Fatalf("expected the valid racks committed, got %d active", stats.TotalActive)
	}
}

func TestProcessBatchStructuralFailure(t *testing.T) {
	f := newEngineFixture()

	result := f.service.ProcessBatch(context.Background(), domain.Batch{})
	if result.Success {
		t.Fatal("nil shelves must be a structural failure")
	}
	if len(result.Errors) == 0 {
		t.Fatal("expected a structural error")
	}

	stats, _ := f.store.Statistics(context.Background())
	if stats.TotalActive != 0 {
		t.Fatalf("structural failure must persist nothing, got %d active", stats.TotalActive)
	}
}

func TestProcessBatchEmptyShelvesSucceeds(t *testing.T) {
	f := newEngineFixture()

	result := f.service.ProcessBatch(context.Background(), domain.Batch{Shelves: []domain.ShelfObservation{}})
	if !result.Success {
		t.Fatalf("empty shelves list is a valid no-op batch: %v", result.Errors)
	}
	if result.CreatedCount != 0 || result.UpdatedCount != 0 {
		t.Fatalf("expected no alerts, got %d / %d", result.CreatedCount, result.UpdatedCount)
	}
}

func TestProcessBatchBeginFailurePersistsNothing(t *testing.T) {
	f := newEngineFixture()
	f.store.beginErr = errors.New("connection refused")

	result := f.service.ProcessBatch(context.Background(), singleRackBatch("A1", emptyRack("R1", "Coca-Cola Classic", 100)))
	if result.Success {
		t.Fatal("begin failure must fail the batch")
	}
}

func TestProcessBatchUnknownLocation(t *testing.T) {
	f := newEngineFixture()

	result := f.service.ProcessBatch(context.Background(), singleRackBatch("B9", emptyRack("R9", "Mystery Item", 0)))
	if !result.Success || result.CreatedCount != 1 {
		t.Fatalf("expected one created alert, got %+v", result)
	}

	alert := result.Alerts[0]
	if alert.Kind != domain.KindMisplacedItem || alert.Priority != domain.PriorityLow {
		t.Fatalf("expected misplaced_item/low, got %s/%s", alert.Kind, alert.Priority)
	}
	if alert.Status != domain.StatusPending {
		t.Fatalf("unknown locations start pending, got %s", alert.Status)
	}
	if !strings.Contains(alert.Title, "UNKNOWN LOCATION: B9-R9") {
		t.Fatalf("unexpected title %q", alert.Title)
	}
	if alert.AssignedStaffID != nil {
		t.Fatalf("unknown-location alerts are unassigned, got %v", *alert.AssignedStaffID)
	}
}

func TestProcessBatchMisplacementWithCorrectLocation(t *testing.T) {
	f := newEngineFixture()
	f.catalog.searchResults = []CatalogEntry{{ShelfName: "A2", RackName: "R5", ProductName: "Pepsi Max"}}

	rack := domain.RackObservation{
		RackID:        "R1",
		Item:          "Pepsi Max",
		ClassCoverage: map[string]float64{domain.CoverageEmpty: 10, domain.CoverageDisordered: 5},
	}
	result := f.service.ProcessBatch(context.Background(), singleRackBatch("A1", rack))

	if !result.Success || result.CreatedCount != 1 {
		t.Fatalf("expected one misplacement alert, got %+v", result)
	}
	alert := result.Alerts[0]
	if alert.Kind != domain.KindMisplacedItem {
		t.Fatalf("expected misplaced_item, got %s", alert.Kind)
	}
	if alert.CorrectLocation == nil || *alert.CorrectLocation != "A2-R5" {
		t.Fatalf("expected correct location A2-R5, got %v", alert.CorrectLocation)
	}
	if !strings.Contains(alert.Message, "Correct location: A2-R5") {
		t.Fatalf("unexpected message %q", alert.Message)
	}
}

func TestProcessBatchStockAndMisplacementAreIndependent(t *testing.T) {
	f := newEngineFixture()

	rack := domain.RackObservation{
		RackID:        "R1",
		Item:          "Pepsi Max",
		ClassCoverage: map[string]float64{domain.CoverageEmpty: 80, domain.CoverageDisordered: 40},
	}
	result := f.service.ProcessBatch(context.Background(), singleRackBatch("A1", rack))

	if result.CreatedCount != 2 {
		t.Fatalf("expected stock and misplacement alerts, got %d", result.CreatedCount)
	}

	stats, _ := f.store.Statistics(context.Background())
	if stats.StockAlerts != 1 || stats.MisplacementAlerts != 1 {
		t.Fatalf("expected one alert per bucket, got %+v", stats)
	}
}

func TestProcessBatchHealthyRackYieldsNothing(t *testing.T) {
	f := newEngineFixture()

	result := f.service.ProcessBatch(context.Background(), singleRackBatch("A1", emptyRack("R1", "Coca-Cola Classic", 20)))
	if !result.Success {
		t.Fatalf("unexpected failure: %v", result.Errors)
	}
	if len(result.Alerts) != 0 {
		t.Fatalf("80%% filled rack must not alert, got %+v", result.Alerts)
	}
}

func TestProcessBatchDedupeConflictRetriesAsUpdate(t *testing.T) {
	f := newEngineFixture()

	// Seed the slot as a concurrent winner would, then force the insert to
	// lose the race.
	winner := domain.Alert{
		ID: 500, Kind: domain.KindLowStock, Priority: domain.PriorityLow,
		Status: domain.StatusActive, ShelfName: "A1", RackName: "R1",
		CreatedBy: "system",
	}
	f.store.alerts[500] = winner
	f.store.nextID = 501

	tx := &fakeTx{store: f.store, staged: make(map[int64]domain.Alert), insertErrs: []error{apperr.Conflict("duplicate active alert")}}

	alert := &domain.Alert{
		Kind: domain.KindOutOfStock, Priority: domain.PriorityCritical,
		Status: domain.StatusActive, ShelfName: "A1", RackName: "R1",
		Title: "new title", Message: "new message", CreatedBy: "system",
	}

	outcome, err := f.service.insertReconciled(context.Background(), tx, alert, "retry note")
	if err != nil {
		t.Fatalf("conflict retry failed: %v", err)
	}
	if outcome.created {
		t.Fatal("losing the race must count as an update")
	}
	if outcome.alert.ID != 500 {
		t.Fatalf("expected the winner's row, got %d", outcome.alert.ID)
	}
	if outcome.alert.Kind != domain.KindOutOfStock || outcome.alert.Title != "new title" {
		t.Fatalf("winner must absorb the new classification, got %+v", outcome.alert)
	}
}

func TestNotifyRecipientsAssignedPlusManagers(t *testing.T) {
	f := newEngineFixture()

	result := f.service.ProcessBatch(context.Background(), singleRackBatch("A1", emptyRack("R1", "Coca-Cola Classic", 100)))
	if result.CreatedCount != 1 {
		t.Fatalf("expected one alert, got %+v", result)
	}

	got := f.dispatcher.sorted()
	want := []string{"E100", "E101", "E201"}
	if len(got) != len(want) {
		t.Fatalf("expected recipients %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected recipients %v, got %v", want, got)
		}
	}

	notified := f.store.notifiedSets[result.Alerts[0].ID]
	if len(notified) != 3 {
		t.Fatalf("expected notified set recorded, got %v", notified)
	}
}

func TestNotifySkipsInactiveAssignee(t *testing.T) {
	f := newEngineFixture()
	f.directory.active["E201"] = false

	f.service.ProcessBatch(context.Background(), singleRackBatch("A1", emptyRack("R1", "Coca-Cola Classic", 100)))

	for _, recipient := range f.dispatcher.sorted() {
		if recipient == "E201" {
			t.Fatal("inactive assignee must not be notified")
		}
	}
}

func TestNotifySkipsUpdatesByDefault(t *testing.T) {
	f := newEngineFixture()
	batch := singleRackBatch("A1", emptyRack("R1", "Coca-Cola Classic", 100))

	f.service.ProcessBatch(context.Background(), batch)
	first := len(f.dispatcher.sorted())

	f.service.ProcessBatch(context.Background(), batch)
	if len(f.dispatcher.sorted()) != first {
		t.Fatal("updates must not notify when NotifyOnUpdate is off")
	}
}

func TestNotifyOnUpdateOptIn(t *testing.T) {
	f := newEngineFixture()
	policy := domain.DefaultPolicy()
	policy.NotifyOnUpdate = true
	f.service.policy = policy

	batch := singleRackBatch("A1", emptyRack("R1", "Coca-Cola Classic", 100))
	f.service.ProcessBatch(context.Background(), batch)
	first := len(f.dispatcher.sorted())

	f.service.ProcessBatch(context.Background(), batch)
	if len(f.dispatcher.sorted()) <= first {
		t.Fatal("updates must notify when NotifyOnUpdate is on")
	}
}
