package action

import (
	"context"
	"errors"

	"github.com/balcao/balcao/internal/model"
	"github.com/balcao/balcao/internal/policy"
	"github.com/balcao/balcao/internal/store"
	"github.com/balcao/balcao/internal/validator"
)

func (c *Catalog) saleActions(deps Deps, sales store.Store[model.Sale], categories store.Store[model.Category], clients store.Store[model.Client]) {
	refs := saleRefs{categories: categories, clients: clients}

	c.ListSales = New(deps, policy.ListSales, dateFilterSchema,
		func(ctx context.Context, _ model.Claims, in DateFilterInput) ([]model.Sale, error) {
			all, err := sales.List(ctx)
			if err != nil || in.Date == "" {
				return all, err
			}
			return filter(all, func(s model.Sale) bool { return s.Date == in.Date }), nil
		})

	c.AddSale = New(deps, policy.AddSale, saleCreateSchema,
		func(ctx context.Context, claims model.Claims, in SaleCreate) (model.Sale, error) {
			if err := refs.check(ctx, in.CategoryID, in.ClientID); err != nil {
				return model.Sale{}, err
			}
			return sales.Add(ctx, claims.SubjectID, model.Sale{
				Description:   in.Description,
				Amount:        in.Amount,
				Quantity:      in.Quantity,
				PaymentMethod: in.PaymentMethod,
				CategoryID:    in.CategoryID,
				ClientID:      in.ClientID,
				Date:          in.Date,
			})
		}, PathSales, PathDashboard)

	c.UpdateSale = New(deps, policy.UpdateSale, saleUpdateSchema,
		func(ctx context.Context, _ model.Claims, in SaleUpdate) (model.Sale, error) {
			if _, err := sales.Get(ctx, in.ID); err != nil {
				return model.Sale{}, err
			}
			if err := refs.check(ctx, in.CategoryID, in.ClientID); err != nil {
				return model.Sale{}, err
			}
			s := model.Sale{
				Description:   in.Description,
				Amount:        in.Amount,
				Quantity:      in.Quantity,
				PaymentMethod: in.PaymentMethod,
				CategoryID:    in.CategoryID,
				ClientID:      in.ClientID,
				Date:          in.Date,
			}
			s.ID = in.ID
			return sales.Update(ctx, s)
		}, PathSales, PathDashboard)

	c.RemoveSale = New(deps, policy.RemoveSale, removeSchema,
		func(ctx context.Context, _ model.Claims, in RemoveInput) (Removed, error) {
			if err := sales.Remove(ctx, in.ID); err != nil {
				return Removed{}, err
			}
			return Removed{ID: in.ID}, nil
		}, PathSales, PathDashboard)
}

// saleRefs checks that records referenced by a sale exist.
type saleRefs struct {
	categories store.Store[model.Category]
	clients    store.Store[model.Client]
}

func (r saleRefs) check(ctx context.Context, categoryID, clientID string) error {
	verr := &validator.ValidationError{Fields: map[string]string{}}

	if categoryID != "" {
		if _, err := r.categories.Get(ctx, categoryID); err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				return err
			}
			verr.Fields["categoryId"] = "category does not exist"
		}
	}
	if clientID != "" {
		if _, err := r.clients.Get(ctx, clientID); err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				return err
			}
			verr.Fields["clientId"] = "client does not exist"
		}
	}

	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}
