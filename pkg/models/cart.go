package models

// CartItem is one aggregated grocery line as persisted in the cart ledger.
type CartItem struct {
	Name    string `json:"name"`
	Unit    string `json:"unit"`
	Amount  string `json:"amount"`
	Checked bool   `json:"checked"`
}

// CartLine is a CartItem together with the ingredient key it is stored under.
type CartLine struct {
	Key string `json:"key"`
	CartItem
}
