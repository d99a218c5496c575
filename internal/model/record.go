package model

import "time"

// Record holds the identity and audit fields shared by every persisted entity.
// ID, CreatedBy and CreatedAt are assigned once by the store and never change.
type Record struct {
	ID        string    `json:"id"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Meta returns the record header. Entities embedding Record satisfy Entity
// through their pointer type.
func (r *Record) Meta() *Record {
	return r
}

// Entity is implemented by pointers to every persisted entity type.
type Entity interface {
	Meta() *Record
}

// Entity kinds, used as store names.
const (
	KindCategories = "categories"
	KindClients    = "clients"
	KindOpenings   = "openings"
	KindSangrias   = "sangrias"
	KindSales      = "sales"
	KindUsers      = "users"
	KindSettings   = "settings"
)

// Kinds lists every entity kind.
var Kinds = []string{
	KindCategories,
	KindClients,
	KindOpenings,
	KindSangrias,
	KindSales,
	KindUsers,
	KindSettings,
}
