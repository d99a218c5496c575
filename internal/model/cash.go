package model

// Opening is the amount placed in the till when the register opens.
type Opening struct {
	Record
	Amount Cents  `json:"amount"`
	Date   string `json:"date"`
	Note   string `json:"note,omitempty"`
}

// Sangria is a cash withdrawal from the till to pay an expense.
type Sangria struct {
	Record
	Amount Cents  `json:"amount"`
	Reason string `json:"reason"`
	Date   string `json:"date"`
}
