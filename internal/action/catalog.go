package action

import (
	"context"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/balcao/balcao/internal/model"
	"github.com/balcao/balcao/internal/store"
)

// Stale paths announced after mutations.
const (
	PathCategories = "/categories"
	PathClients    = "/clients"
	PathCash       = "/cash"
	PathDashboard  = "/dashboard"
	PathSales      = "/sales"
	PathUsers      = "/users"
	PathSettings   = "/settings"
	PathCalendar   = "/calendar"
)

// Stores holds one store per entity kind.
type Stores struct {
	Categories store.Store[model.Category]
	Clients    store.Store[model.Client]
	Openings   store.Store[model.Opening]
	Sangrias   store.Store[model.Sangria]
	Sales      store.Store[model.Sale]
	Users      store.Store[model.User]
	Settings   store.Store[model.Setting]
}

// Invoker is an action callable without knowing its input and output types.
type Invoker interface {
	Name() string
	Invoke(ctx context.Context, token string, raw []byte) (any, error)
}

// Catalog is every action the backend exposes.
type Catalog struct {
	ListCategories *Action[SearchInput, []model.Category]
	AddCategory    *Action[CategoryCreate, model.Category]
	UpdateCategory *Action[CategoryUpdate, model.Category]
	RemoveCategory *Action[RemoveInput, Removed]

	ListClients  *Action[SearchInput, []model.Client]
	AddClient    *Action[ClientCreate, model.Client]
	UpdateClient *Action[ClientUpdate, model.Client]
	RemoveClient *Action[RemoveInput, Removed]

	ListOpenings  *Action[DateFilterInput, []model.Opening]
	AddOpening    *Action[OpeningCreate, model.Opening]
	UpdateOpening *Action[OpeningUpdate, model.Opening]
	RemoveOpening *Action[RemoveInput, Removed]

	ListSangrias  *Action[DateFilterInput, []model.Sangria]
	AddSangria    *Action[SangriaCreate, model.Sangria]
	UpdateSangria *Action[SangriaUpdate, model.Sangria]
	RemoveSangria *Action[RemoveInput, Removed]

	ListSales  *Action[DateFilterInput, []model.Sale]
	AddSale    *Action[SaleCreate, model.Sale]
	UpdateSale *Action[SaleUpdate, model.Sale]
	RemoveSale *Action[RemoveInput, Removed]

	ListUsers  *Action[Empty, []model.UserView]
	AddUser    *Action[UserCreate, model.UserView]
	UpdateUser *Action[UserUpdate, model.UserView]
	RemoveUser *Action[RemoveInput, Removed]

	GetCalendar    *Action[Empty, model.Setting]
	UpdateCalendar *Action[CalendarInput, model.Setting]
}

// NewCatalog wires every action to deps and stores.
func NewCatalog(deps Deps, stores Stores) *Catalog {
	deps = deps.withDefaults()
	c := &Catalog{}
	c.categoryActions(deps, stores.Categories)
	c.clientActions(deps, stores.Clients)
	c.openingActions(deps, stores.Openings)
	c.sangriaActions(deps, stores.Sangrias)
	c.saleActions(deps, stores.Sales, stores.Categories, stores.Clients)
	c.userActions(deps, stores.Users)
	c.settingActions(deps, stores.Settings)
	return c
}

// All returns every action keyed by name.
func (c *Catalog) All() map[string]Invoker {
	all := []Invoker{
		c.ListCategories, c.AddCategory, c.UpdateCategory, c.RemoveCategory,
		c.ListClients, c.AddClient, c.UpdateClient, c.RemoveClient,
		c.ListOpenings, c.AddOpening, c.UpdateOpening, c.RemoveOpening,
		c.ListSangrias, c.AddSangria, c.UpdateSangria, c.RemoveSangria,
		c.ListSales, c.AddSale, c.UpdateSale, c.RemoveSale,
		c.ListUsers, c.AddUser, c.UpdateUser, c.RemoveUser,
		c.GetCalendar, c.UpdateCalendar,
	}
	out := make(map[string]Invoker, len(all))
	for _, a := range all {
		out[a.Name()] = a
	}
	return out
}

// sortByName orders items with Brazilian Portuguese collation, ignoring case.
func sortByName[T any](items []T, name func(T) string) {
	collator := collate.New(language.BrazilianPortuguese, collate.IgnoreCase)
	keys := make([]string, len(items))
	for i, it := range items {
		keys[i] = name(it)
	}
	// Sort keys and items together.
	idx := make([]int, len(items))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		return collator.CompareString(keys[a], keys[b])
	})
	sorted := make([]T, len(items))
	for i, j := range idx {
		sorted[i] = items[j]
	}
	copy(items, sorted)
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}
