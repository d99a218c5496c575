package action

import (
	"context"
	"strings"
	"sync"

	"github.com/balcao/balcao/internal/model"
	"github.com/balcao/balcao/internal/policy"
	"github.com/balcao/balcao/internal/store"
	"github.com/balcao/balcao/internal/validator"
)

func (c *Catalog) categoryActions(deps Deps, categories store.Store[model.Category]) {
	// Held from the name check to the write.
	var writeMu sync.Mutex

	c.ListCategories = New(deps, policy.ListCategories, searchSchema,
		func(ctx context.Context, _ model.Claims, in SearchInput) ([]model.Category, error) {
			all, err := categories.List(ctx)
			if err != nil {
				return nil, err
			}
			if in.Search != "" {
				all = filter(all, func(cat model.Category) bool {
					return containsFold(cat.Name, in.Search)
				})
			}
			sortByName(all, func(cat model.Category) string { return cat.Name })
			return all, nil
		})

	c.AddCategory = New(deps, policy.AddCategory, categoryCreateSchema,
		func(ctx context.Context, claims model.Claims, in CategoryCreate) (model.Category, error) {
			writeMu.Lock()
			defer writeMu.Unlock()

			if err := uniqueCategoryName(ctx, categories, in.Name, ""); err != nil {
				return model.Category{}, err
			}
			return categories.Add(ctx, claims.SubjectID, model.Category{Name: in.Name, Icon: in.Icon})
		}, PathCategories, PathSales)

	c.UpdateCategory = New(deps, policy.UpdateCategory, categoryUpdateSchema,
		func(ctx context.Context, _ model.Claims, in CategoryUpdate) (model.Category, error) {
			writeMu.Lock()
			defer writeMu.Unlock()

			current, err := categories.Get(ctx, in.ID)
			if err != nil {
				return model.Category{}, err
			}
			if err := uniqueCategoryName(ctx, categories, in.Name, in.ID); err != nil {
				return model.Category{}, err
			}
			current.Name = in.Name
			current.Icon = in.Icon
			return categories.Update(ctx, current)
		}, PathCategories, PathSales)

	c.RemoveCategory = New(deps, policy.RemoveCategory, removeSchema,
		func(ctx context.Context, _ model.Claims, in RemoveInput) (Removed, error) {
			if err := categories.Remove(ctx, in.ID); err != nil {
				return Removed{}, err
			}
			return Removed{ID: in.ID}, nil
		}, PathCategories, PathSales)
}

// uniqueCategoryName rejects a name already used by another category,
// ignoring case. exceptID is the category being renamed.
func uniqueCategoryName(ctx context.Context, categories store.Store[model.Category], name, exceptID string) error {
	all, err := categories.List(ctx)
	if err != nil {
		return err
	}
	for _, cat := range all {
		if cat.ID != exceptID && strings.EqualFold(cat.Name, name) {
			return validator.Field("name", "a category with this name already exists")
		}
	}
	return nil
}
