package domain

// Soda is one slot of the machine's inventory. Name is the unique key and may
// carry a subcategory suffix joined by a single space ("Cola Diet"). Reserved
// counts stock earmarked for pending claims; reservations never check it
// against Stock, so it can overshoot.
type Soda struct {
	Name     string `json:"Name"`
	Stock    int    `json:"Stock"`
	Price    int    `json:"Price"`
	Reserved int    `json:"Reserved"`
}

// Order is a remote reservation awaiting claim at the machine. PinCode is the
// retrieval code handed to the customer; it stays allocated even after the
// order completes.
type Order struct {
	ID         int64  `json:"Id"`
	Soda       string `json:"Soda"`
	PinCode    int    `json:"PinCode"`
	IsComplete bool   `json:"IsComplete"`
}

// OrderRequest is the payload from the ordering front end.
type OrderRequest struct {
	Soda string `json:"soda"`
}
