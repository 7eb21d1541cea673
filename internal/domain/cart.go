package domain

type CartLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// CartSnapshot is the server-confirmed cart state. Totals are always derived
// from the lines, never stored independently of them.
type CartSnapshot struct {
	Lines      []CartLine `json:"items"`
	TotalItems int        `json:"total_items"`
	TotalPrice float64    `json:"total_price"`
}

// NewCartSnapshot recomputes both totals from the given lines. Lines with a
// quantity below 1 are dropped, one line is kept per product id (duplicates
// merge by summing quantities).
func NewCartSnapshot(lines []CartLine) CartSnapshot {
	merged := make([]CartLine, 0, len(lines))
	index := make(map[string]int, len(lines))

	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		if i, ok := index[line.Product.ID]; ok {
			merged[i].Quantity += line.Quantity
			continue
		}
		index[line.Product.ID] = len(merged)
		merged = append(merged, line)
	}

	snap := CartSnapshot{Lines: merged}
	for _, line := range merged {
		snap.TotalItems += line.Quantity
		snap.TotalPrice += line.Product.Price * float64(line.Quantity)
	}
	return snap
}

func (s CartSnapshot) IsEmpty() bool {
	return len(s.Lines) == 0
}
