package action

import (
	"context"

	"github.com/balcao/balcao/internal/model"
	"github.com/balcao/balcao/internal/policy"
	"github.com/balcao/balcao/internal/store"
)

func (c *Catalog) clientActions(deps Deps, clients store.Store[model.Client]) {
	c.ListClients = New(deps, policy.ListClients, searchSchema,
		func(ctx context.Context, _ model.Claims, in SearchInput) ([]model.Client, error) {
			all, err := clients.List(ctx)
			if err != nil {
				return nil, err
			}
			if in.Search != "" {
				all = filter(all, func(cl model.Client) bool {
					return containsFold(cl.Name, in.Search) ||
						containsFold(cl.Phone, in.Search) ||
						containsFold(cl.Email, in.Search) ||
						containsFold(cl.Document, in.Search)
				})
			}
			sortByName(all, func(cl model.Client) string { return cl.Name })
			return all, nil
		})

	c.AddClient = New(deps, policy.AddClient, clientCreateSchema,
		func(ctx context.Context, claims model.Claims, in ClientCreate) (model.Client, error) {
			return clients.Add(ctx, claims.SubjectID, model.Client{
				Name:     in.Name,
				Phone:    in.Phone,
				Email:    in.Email,
				Document: in.Document,
				Notes:    in.Notes,
			})
		}, PathClients)

	c.UpdateClient = New(deps, policy.UpdateClient, clientUpdateSchema,
		func(ctx context.Context, _ model.Claims, in ClientUpdate) (model.Client, error) {
			cl := model.Client{
				Name:     in.Name,
				Phone:    in.Phone,
				Email:    in.Email,
				Document: in.Document,
				Notes:    in.Notes,
			}
			cl.ID = in.ID
			return clients.Update(ctx, cl)
		}, PathClients)

	c.RemoveClient = New(deps, policy.RemoveClient, removeSchema,
		func(ctx context.Context, _ model.Claims, in RemoveInput) (Removed, error) {
			if err := clients.Remove(ctx, in.ID); err != nil {
				return Removed{}, err
			}
			return Removed{ID: in.ID}, nil
		}, PathClients)
}
