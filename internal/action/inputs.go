package action

import (
	"slices"
	"strings"

	"github.com/balcao/balcao/internal/model"
	"github.com/balcao/balcao/internal/validator"
)

// Empty is the input of actions that take no parameters.
type Empty struct{}

// SearchInput filters a list by a case-insensitive substring.
type SearchInput struct {
	Search string `json:"search" validate:"max=100"`
}

// DateFilterInput filters a list by calendar date.
type DateFilterInput struct {
	Date string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

// RemoveInput identifies a record to delete.
type RemoveInput struct {
	ID string `json:"id" validate:"required,entityid"`
}

// Removed is returned by remove actions.
type Removed struct {
	ID string `json:"id"`
}

// CategoryCreate is the payload of addCategory.
type CategoryCreate struct {
	ID   string `json:"id" validate:"isdefault"`
	Name string `json:"name" validate:"required,min=3,max=50"`
	Icon string `json:"icon" validate:"required,max=16"`
}

// CategoryUpdate is the payload of updateCategory.
type CategoryUpdate struct {
	ID   string `json:"id" validate:"required,entityid"`
	Name string `json:"name" validate:"required,min=3,max=50"`
	Icon string `json:"icon" validate:"required,max=16"`
}

// ClientCreate is the payload of addClient.
type ClientCreate struct {
	ID       string `json:"id" validate:"isdefault"`
	Name     string `json:"name" validate:"required,min=3,max=100"`
	Phone    string `json:"phone" validate:"max=20"`
	Email    string `json:"email" validate:"omitempty,email,max=254"`
	Document string `json:"document" validate:"max=20"`
	Notes    string `json:"notes" validate:"max=500"`
}

// ClientUpdate is the payload of updateClient.
type ClientUpdate struct {
	ID       string `json:"id" validate:"required,entityid"`
	Name     string `json:"name" validate:"required,min=3,max=100"`
	Phone    string `json:"phone" validate:"max=20"`
	Email    string `json:"email" validate:"omitempty,email,max=254"`
	Document string `json:"document" validate:"max=20"`
	Notes    string `json:"notes" validate:"max=500"`
}

func (in *ClientCreate) Normalize() { in.Email = strings.ToLower(in.Email) }
func (in *ClientUpdate) Normalize() { in.Email = strings.ToLower(in.Email) }

// OpeningCreate is the payload of addOpening.
type OpeningCreate struct {
	ID     string      `json:"id" validate:"isdefault"`
	Amount model.Cents `json:"amount" validate:"gte=0,lte=10000000000"`
	Date   string      `json:"date" validate:"required,datetime=2006-01-02"`
	Note   string      `json:"note" validate:"max=200"`
}

// OpeningUpdate is the payload of updateOpening.
type OpeningUpdate struct {
	ID     string      `json:"id" validate:"required,entityid"`
	Amount model.Cents `json:"amount" validate:"gte=0,lte=10000000000"`
	Date   string      `json:"date" validate:"required,datetime=2006-01-02"`
	Note   string      `json:"note" validate:"max=200"`
}

// SangriaCreate is the payload of addSangria.
type SangriaCreate struct {
	ID     string      `json:"id" validate:"isdefault"`
	Amount model.Cents `json:"amount" validate:"gt=0,lte=10000000000"`
	Reason string      `json:"reason" validate:"required,min=3,max=200"`
	Date   string      `json:"date" validate:"required,datetime=2006-01-02"`
}

// SangriaUpdate is the payload of updateSangria.
type SangriaUpdate struct {
	ID     string      `json:"id" validate:"required,entityid"`
	Amount model.Cents `json:"amount" validate:"gt=0,lte=10000000000"`
	Reason string      `json:"reason" validate:"required,min=3,max=200"`
	Date   string      `json:"date" validate:"required,datetime=2006-01-02"`
}

// SaleCreate is the payload of addSale.
type SaleCreate struct {
	ID            string              `json:"id" validate:"isdefault"`
	Description   string              `json:"description" validate:"required,min=3,max=200"`
	Amount        model.Cents         `json:"amount" validate:"gt=0,lte=10000000000"`
	Quantity      int                 `json:"quantity" validate:"min=1,max=10000"`
	PaymentMethod model.PaymentMethod `json:"paymentMethod" validate:"required,oneof=cash credit debit pix"`
	CategoryID    string              `json:"categoryId" validate:"omitempty,entityid"`
	ClientID      string              `json:"clientId" validate:"omitempty,entityid"`
	Date          string              `json:"date" validate:"required,datetime=2006-01-02"`
}

// SaleUpdate is the payload of updateSale.
type SaleUpdate struct {
	ID            string              `json:"id" validate:"required,entityid"`
	Description   string              `json:"description" validate:"required,min=3,max=200"`
	Amount        model.Cents         `json:"amount" validate:"gt=0,lte=10000000000"`
	Quantity      int                 `json:"quantity" validate:"min=1,max=10000"`
	PaymentMethod model.PaymentMethod `json:"paymentMethod" validate:"required,oneof=cash credit debit pix"`
	CategoryID    string              `json:"categoryId" validate:"omitempty,entityid"`
	ClientID      string              `json:"clientId" validate:"omitempty,entityid"`
	Date          string              `json:"date" validate:"required,datetime=2006-01-02"`
}

// An absent quantity means one unit; an absent payment method means cash.
func normalizeSale(quantity *int, method *model.PaymentMethod) {
	if *quantity == 0 {
		*quantity = 1
	}
	*method = model.PaymentMethod(strings.ToLower(string(*method)))
	if *method == "" {
		*method = model.PaymentCash
	}
}

func (in *SaleCreate) Normalize() { normalizeSale(&in.Quantity, &in.PaymentMethod) }
func (in *SaleUpdate) Normalize() { normalizeSale(&in.Quantity, &in.PaymentMethod) }

// UserCreate is the payload of addUser.
type UserCreate struct {
	ID       string     `json:"id" validate:"isdefault"`
	Name     string     `json:"name" validate:"required,min=3,max=100"`
	Email    string     `json:"email" validate:"required,email,max=254"`
	Role     model.Role `json:"role" validate:"required,oneof=user admin root"`
	Password string     `json:"password" schema:"notrim" validate:"required,min=8,max=128"`
}

// UserUpdate is the payload of updateUser. An empty password keeps the current one.
type UserUpdate struct {
	ID       string     `json:"id" validate:"required,entityid"`
	Name     string     `json:"name" validate:"required,min=3,max=100"`
	Email    string     `json:"email" validate:"required,email,max=254"`
	Role     model.Role `json:"role" validate:"required,oneof=user admin root"`
	Password string     `json:"password" schema:"notrim" validate:"omitempty,min=8,max=128"`
}

func (in *UserCreate) Normalize() {
	in.Email = strings.ToLower(in.Email)
	in.Role = model.Role(strings.ToLower(string(in.Role)))
}

func (in *UserUpdate) Normalize() {
	in.Email = strings.ToLower(in.Email)
	in.Role = model.Role(strings.ToLower(string(in.Role)))
}

// CalendarInput is the payload of updateCalendarSettings.
type CalendarInput struct {
	HighlightedDays []int `json:"highlightedDays" validate:"max=31,dive,min=1,max=31"`
	ClosedWeekdays  []int `json:"closedWeekdays" validate:"max=7,unique,dive,min=0,max=6"`
}

// Normalize de-duplicates and sorts highlighted days and sorts closed
// weekdays. Repeated weekdays are left for the unique rule to reject.
func (in *CalendarInput) Normalize() {
	if in.HighlightedDays == nil {
		in.HighlightedDays = []int{}
	}
	slices.Sort(in.HighlightedDays)
	in.HighlightedDays = slices.Compact(in.HighlightedDays)

	if in.ClosedWeekdays == nil {
		in.ClosedWeekdays = []int{}
	}
	slices.Sort(in.ClosedWeekdays)
}

// Schemas, declared once.
var (
	emptySchema      = validator.New[Empty]()
	searchSchema     = validator.New[SearchInput]()
	dateFilterSchema = validator.New[DateFilterInput]()
	removeSchema     = validator.New[RemoveInput]()

	categoryCreateSchema = validator.New[CategoryCreate]()
	categoryUpdateSchema = validator.New[CategoryUpdate]()
	clientCreateSchema   = validator.New[ClientCreate]()
	clientUpdateSchema   = validator.New[ClientUpdate]()
	openingCreateSchema  = validator.New[OpeningCreate]()
	openingUpdateSchema  = validator.New[OpeningUpdate]()
	sangriaCreateSchema  = validator.New[SangriaCreate]()
	sangriaUpdateSchema  = validator.New[SangriaUpdate]()
	saleCreateSchema     = validator.New[SaleCreate]()
	saleUpdateSchema     = validator.New[SaleUpdate]()
	userCreateSchema     = validator.New[UserCreate]()
	userUpdateSchema     = validator.New[UserUpdate]()
	calendarSchema       = validator.New[CalendarInput]()
)
