package domain

// Plan describes one purchasable credit bundle. Plans are immutable and
// defined in code; there are no numeric plan ids.
type Plan struct {
	Name    string `json:"name"`
	Credits int64  `json:"credits"`
	Amount  int64  `json:"amount"` // price in whole currency units
}
