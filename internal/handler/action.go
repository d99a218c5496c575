package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/balcao/balcao/internal/action"
)

type resource struct {
	path                     string
	list, add, update, remove action.Invoker
}

// ActionHandler exposes the action catalog over REST.
type ActionHandler struct {
	resources []resource
	calendar  struct{ get, update action.Invoker }
	logger    *slog.Logger
}

// NewActionHandler creates an ActionHandler for catalog.
func NewActionHandler(catalog *action.Catalog, logger *slog.Logger) *ActionHandler {
	h := &ActionHandler{
		resources: []resource{
			{"/categories", catalog.ListCategories, catalog.AddCategory, catalog.UpdateCategory, catalog.RemoveCategory},
			{"/clients", catalog.ListClients, catalog.AddClient, catalog.UpdateClient, catalog.RemoveClient},
			{"/openings", catalog.ListOpenings, catalog.AddOpening, catalog.UpdateOpening, catalog.RemoveOpening},
			{"/sangrias", catalog.ListSangrias, catalog.AddSangria, catalog.UpdateSangria, catalog.RemoveSangria},
			{"/sales", catalog.ListSales, catalog.AddSale, catalog.UpdateSale, catalog.RemoveSale},
			{"/users", catalog.ListUsers, catalog.AddUser, catalog.UpdateUser, catalog.RemoveUser},
		},
		logger: logger.With("component", "http"),
	}
	h.calendar.get = catalog.GetCalendar
	h.calendar.update = catalog.UpdateCalendar
	return h
}

// Mount registers the entity and settings routes on r:
//
//	GET    /{kind}        list, query parameters as input
//	POST   /{kind}        add
//	PUT    /{kind}/{id}   update
//	DELETE /{kind}/{id}   remove
//	GET    /settings/calendar
//	PUT    /settings/calendar
func (h *ActionHandler) Mount(r chi.Router) {
	for _, res := range h.resources {
		r.Route(res.path, func(r chi.Router) {
			r.Get("/", h.fromQuery(res.list))
			r.Post("/", h.fromBody(res.add, http.StatusCreated))
			r.Put("/{id}", h.fromBodyWithID(res.update))
			r.Delete("/{id}", h.fromID(res.remove))
		})
	}
	r.Get("/settings/calendar", h.fromQuery(h.calendar.get))
	r.Put("/settings/calendar", h.fromBody(h.calendar.update, http.StatusOK))
}

func (h *ActionHandler) fromQuery(inv action.Invoker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := queryInput(r)
		if err != nil {
			writeFailure(w, r, h.logger, err)
			return
		}
		h.invoke(w, r, inv, raw, http.StatusOK)
	}
}

func (h *ActionHandler) fromBody(inv action.Invoker, status int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := readBody(r)
		if err != nil {
			writeFailure(w, r, h.logger, err)
			return
		}
		h.invoke(w, r, inv, raw, status)
	}
}

func (h *ActionHandler) fromBodyWithID(inv action.Invoker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := readBody(r)
		if err != nil {
			writeFailure(w, r, h.logger, err)
			return
		}
		h.invoke(w, r, inv, withID(body, chi.URLParam(r, "id")), http.StatusOK)
	}
}

func (h *ActionHandler) fromID(inv action.Invoker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.invoke(w, r, inv, withID(nil, chi.URLParam(r, "id")), http.StatusOK)
	}
}

func (h *ActionHandler) invoke(w http.ResponseWriter, r *http.Request, inv action.Invoker, raw []byte, status int) {
	out, err := inv.Invoke(r.Context(), bearerToken(r), raw)
	if err != nil {
		writeFailure(w, r, h.logger, err)
		return
	}
	writeJSON(w, status, out)
}
