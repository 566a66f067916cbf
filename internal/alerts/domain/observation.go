package domain

// Class-coverage labels reported by the perception pipeline.
const (
	CoverageEmpty      = "empty"
	CoverageDisordered = "disordered"
)

// RackObservation is one rack's perception signal within a batch.
type RackObservation struct {
	RackID        string
	Item          string
	ClassCoverage map[string]float64
}

// Empty returns the empty-class coverage, zero when absent.
func (r RackObservation) Empty() float64 {
	return r.ClassCoverage[CoverageEmpty]
}

// Disordered returns the disordered-class coverage, zero when absent.
func (r RackObservation) Disordered() float64 {
	return r.ClassCoverage[CoverageDisordered]
}

// ShelfObservation groups the rack observations captured for one shelf.
type ShelfObservation struct {
	ShelfID string
	Racks   []RackObservation
}

// Batch is one ingestion unit: the shelves captured in a single perception
// pass, processed in input order and committed atomically. Shelves is nil
// for a structurally invalid batch.
type Batch struct {
	Shelves     []ShelfObservation
	SnapshotKey string
}

// ClampPercent forces a percentage into [0,100]. Upstream perception
// occasionally reports slightly out-of-range coverage.
func ClampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
