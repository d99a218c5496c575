package action

import (
	"context"

	"github.com/balcao/balcao/internal/model"
	"github.com/balcao/balcao/internal/policy"
	"github.com/balcao/balcao/internal/store"
)

func (c *Catalog) openingActions(deps Deps, openings store.Store[model.Opening]) {
	c.ListOpenings = New(deps, policy.ListOpenings, dateFilterSchema,
		func(ctx context.Context, _ model.Claims, in DateFilterInput) ([]model.Opening, error) {
			all, err := openings.List(ctx)
			if err != nil || in.Date == "" {
				return all, err
			}
			return filter(all, func(o model.Opening) bool { return o.Date == in.Date }), nil
		})

	c.AddOpening = New(deps, policy.AddOpening, openingCreateSchema,
		func(ctx context.Context, claims model.Claims, in OpeningCreate) (model.Opening, error) {
			return openings.Add(ctx, claims.SubjectID, model.Opening{
				Amount: in.Amount,
				Date:   in.Date,
				Note:   in.Note,
			})
		}, PathCash, PathDashboard)

	c.UpdateOpening = New(deps, policy.UpdateOpening, openingUpdateSchema,
		func(ctx context.Context, _ model.Claims, in OpeningUpdate) (model.Opening, error) {
			o := model.Opening{Amount: in.Amount, Date: in.Date, Note: in.Note}
			o.ID = in.ID
			return openings.Update(ctx, o)
		}, PathCash, PathDashboard)

	c.RemoveOpening = New(deps, policy.RemoveOpening, removeSchema,
		func(ctx context.Context, _ model.Claims, in RemoveInput) (Removed, error) {
			if err := openings.Remove(ctx, in.ID); err != nil {
				return Removed{}, err
			}
			return Removed{ID: in.ID}, nil
		}, PathCash, PathDashboard)
}

func (c *Catalog) sangriaActions(deps Deps, sangrias store.Store[model.Sangria]) {
	c.ListSangrias = New(deps, policy.ListSangrias, dateFilterSchema,
		func(ctx context.Context, _ model.Claims, in DateFilterInput) ([]model.Sangria, error) {
			all, err := sangrias.List(ctx)
			if err != nil || in.Date == "" {
				return all, err
			}
			return filter(all, func(s model.Sangria) bool { return s.Date == in.Date }), nil
		})

	c.AddSangria = New(deps, policy.AddSangria, sangriaCreateSchema,
		func(ctx context.Context, claims model.Claims, in SangriaCreate) (model.Sangria, error) {
			return sangrias.Add(ctx, claims.SubjectID, model.Sangria{
				Amount: in.Amount,
				Reason: in.Reason,
				Date:   in.Date,
			})
		}, PathCash, PathDashboard)

	c.UpdateSangria = New(deps, policy.UpdateSangria, sangriaUpdateSchema,
		func(ctx context.Context, _ model.Claims, in SangriaUpdate) (model.Sangria, error) {
			s := model.Sangria{Amount: in.Amount, Reason: in.Reason, Date: in.Date}
			s.ID = in.ID
			return sangrias.Update(ctx, s)
		}, PathCash, PathDashboard)

	c.RemoveSangria = New(deps, policy.RemoveSangria, removeSchema,
		func(ctx context.Context, _ model.Claims, in RemoveInput) (Removed, error) {
			if err := sangrias.Remove(ctx, in.ID); err != nil {
				return Removed{}, err
			}
			return Removed{ID: in.ID}, nil
		}, PathCash, PathDashboard)
}
