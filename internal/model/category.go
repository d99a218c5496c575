package model

// Category groups products and sales for display.
type Category struct {
	Record
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// Client is a customer of the store.
type Client struct {
	Record
	Name     string `json:"name"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty"`
	Document string `json:"document,omitempty"`
	Notes    string `json:"notes,omitempty"`
}
