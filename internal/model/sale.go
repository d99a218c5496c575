package model

// PaymentMethod identifies how a sale was paid.
type PaymentMethod string

// Payment methods.
const (
	PaymentCash   PaymentMethod = "cash"
	PaymentCredit PaymentMethod = "credit"
	PaymentDebit  PaymentMethod = "debit"
	PaymentPix    PaymentMethod = "pix"
)

// Sale is a single registered sale.
type Sale struct {
	Record
	Description   string        `json:"description"`
	Amount        Cents         `json:"amount"`
	Quantity      int           `json:"quantity"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	CategoryID    string        `json:"categoryId,omitempty"`
	ClientID      string        `json:"clientId,omitempty"`
	Date          string        `json:"date"`
}
