package domain

import "fmt"

// StockDecision is the outcome of classifying a rack's fill percentage.
type StockDecision struct {
	Kind            Kind
	Priority        Priority
	Title           string
	Message         string
	FillPercentage  float64
	EmptyPercentage float64
}

var prioritySymbols = map[Priority]string{
	PriorityCritical: "🚨",
	PriorityHigh:     "🔴",
	PriorityMedium:   "🟡",
	PriorityLow:      "🟢",
}

// PrioritySymbol returns the display symbol for a priority.
func PrioritySymbol(p Priority) string {
	if symbol, ok := prioritySymbols[p]; ok {
		return symbol
	}
	return "📢"
}

// ClassifyFill maps a fill percentage to an alert kind and priority.
// Pure function of fill and the policy thresholds; first match wins.
// The second return is false when the rack is sufficiently stocked.
func (p Policy) ClassifyFill(fill float64) (Kind, Priority, bool) {
	t := p.Thresholds
	switch {
	case fill <= t.OutOfStock:
		return KindOutOfStock, PriorityCritical, true
	case fill <= t.Critical:
		return KindCriticalStock, PriorityHigh, true
	case fill <= t.Medium:
		return KindMediumStock, PriorityMedium, true
	case fill <= t.Low:
		return KindLowStock, PriorityLow, true
	default:
		return "", "", false
	}
}

// BuildStockDecision classifies a fill percentage and renders the title
// and message for the given product and location. Returns false when no
// alert is warranted.
func (p Policy) BuildStockDecision(productName, shelf, rack string, emptyPct float64) (StockDecision, bool) {
	fill := 100 - emptyPct

	kind, priority, ok := p.ClassifyFill(fill)
	if !ok {
		return StockDecision{}, false
	}

	title := fmt.Sprintf("%s %s: %s", PrioritySymbol(priority), priorityLabel(priority), productName)

	var message string
	if kind == KindOutOfStock {
		message = fmt.Sprintf("URGENT: %s is OUT OF STOCK at %s-%s. Immediate restocking required!",
			productName, shelf, rack)
	} else {
		message = fmt.Sprintf("%s is %s priority at %s-%s. Current stock: %.1f%% filled.",
			productName, priority, shelf, rack, fill)
	}

	return StockDecision{
		Kind:            kind,
		Priority:        priority,
		Title:           title,
		Message:         message,
		FillPercentage:  fill,
		EmptyPercentage: emptyPct,
	}, true
}

func priorityLabel(p Priority) string {
	switch p {
	case PriorityCritical:
		return "CRITICAL"
	case PriorityHigh:
		return "HIGH"
	case PriorityMedium:
		return "MEDIUM"
	case PriorityLow:
		return "LOW"
	default:
		return "ALERT"
	}
}
