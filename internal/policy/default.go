package policy

import "github.com/balcao/balcao/internal/model"

// Action names.
const (
	ListCategories = "listCategories"
	AddCategory    = "addCategory"
	UpdateCategory = "updateCategory"
	RemoveCategory = "removeCategory"
	ListClients    = "listClients"
	AddClient      = "addClient"
	UpdateClient   = "updateClient"
	RemoveClient   = "removeClient"
	ListOpenings   = "listOpenings"
	AddOpening     = "addOpening"
	UpdateOpening  = "updateOpening"
	RemoveOpening  = "removeOpening"
	ListSangrias   = "listSangrias"
	AddSangria     = "addSangria"
	UpdateSangria  = "updateSangria"
	RemoveSangria  = "removeSangria"
	ListSales      = "listSales"
	AddSale        = "addSale"
	UpdateSale     = "updateSale"
	RemoveSale     = "removeSale"
	ListUsers      = "listUsers"
	AddUser        = "addUser"
	UpdateUser     = "updateUser"
	RemoveUser     = "removeUser"
	GetCalendar    = "getCalendarSettings"
	UpdateCalendar = "updateCalendarSettings"
)

// Default is the authorization table for every action the catalog exposes.
var Default = Table{
	ListCategories: Authenticated(),
	AddCategory:    AtLeast(model.RoleAdmin),
	UpdateCategory: AtLeast(model.RoleAdmin),
	RemoveCategory: AtLeast(model.RoleAdmin),

	ListClients:  Authenticated(),
	AddClient:    Authenticated(),
	UpdateClient: Authenticated(),
	RemoveClient: AtLeast(model.RoleAdmin),

	ListOpenings:  Authenticated(),
	AddOpening:    Authenticated(),
	UpdateOpening: AtLeast(model.RoleAdmin),
	RemoveOpening: AtLeast(model.RoleAdmin),

	ListSangrias:  Authenticated(),
	AddSangria:    Authenticated(),
	UpdateSangria: AtLeast(model.RoleAdmin),
	RemoveSangria: AtLeast(model.RoleAdmin),

	ListSales:  Authenticated(),
	AddSale:    Authenticated(),
	UpdateSale: AtLeast(model.RoleAdmin),
	RemoveSale: AtLeast(model.RoleAdmin),

	ListUsers:  AtLeast(model.RoleAdmin),
	AddUser:    AtLeast(model.RoleAdmin),
	UpdateUser: AtLeast(model.RoleAdmin),
	RemoveUser: Exactly(model.RoleRoot),

	GetCalendar:    Authenticated(),
	UpdateCalendar: AtLeast(model.RoleAdmin),
}
