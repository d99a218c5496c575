package action

import (
	"context"
	"sync"

	"github.com/balcao/balcao/internal/model"
	"github.com/balcao/balcao/internal/policy"
	"github.com/balcao/balcao/internal/store"
	"github.com/balcao/balcao/internal/validator"
)

func (c *Catalog) userActions(deps Deps, users store.Store[model.User]) {
	// Held from the e-mail check to the write, so two users never share an e-mail.
	var writeMu sync.Mutex

	c.ListUsers = New(deps, policy.ListUsers, emptySchema,
		func(ctx context.Context, _ model.Claims, _ Empty) ([]model.UserView, error) {
			all, err := users.List(ctx)
			if err != nil {
				return nil, err
			}
			views := make([]model.UserView, len(all))
			for i := range all {
				views[i] = all[i].View()
			}
			sortByName(views, func(u model.UserView) string { return u.Name })
			return views, nil
		})

	c.AddUser = New(deps, policy.AddUser, userCreateSchema,
		func(ctx context.Context, claims model.Claims, in UserCreate) (model.UserView, error) {
			if in.Role == model.RoleRoot && claims.Role != model.RoleRoot {
				return model.UserView{}, restricted("only root can create root users")
			}
			hash, err := deps.Hasher.Hash(in.Password)
			if err != nil {
				return model.UserView{}, err
			}

			writeMu.Lock()
			defer writeMu.Unlock()

			if err := uniqueEmail(ctx, users, in.Email, ""); err != nil {
				return model.UserView{}, err
			}
			u, err := users.Add(ctx, claims.SubjectID, model.User{
				Name:         in.Name,
				Email:        in.Email,
				Role:         in.Role,
				PasswordHash: hash,
			})
			if err != nil {
				return model.UserView{}, err
			}
			return u.View(), nil
		}, PathUsers)

	c.UpdateUser = New(deps, policy.UpdateUser, userUpdateSchema,
		func(ctx context.Context, claims model.Claims, in UserUpdate) (model.UserView, error) {
			var hash string
			if in.Password != "" {
				h, err := deps.Hasher.Hash(in.Password)
				if err != nil {
					return model.UserView{}, err
				}
				hash = h
			}

			writeMu.Lock()
			defer writeMu.Unlock()

			current, err := users.Get(ctx, in.ID)
			if err != nil {
				return model.UserView{}, err
			}
			if claims.Role != model.RoleRoot {
				if current.Role == model.RoleRoot {
					return model.UserView{}, restricted("only root can modify root users")
				}
				if in.Role == model.RoleRoot {
					return model.UserView{}, restricted("only root can promote users to root")
				}
			}
			if err := uniqueEmail(ctx, users, in.Email, in.ID); err != nil {
				return model.UserView{}, err
			}

			current.Name = in.Name
			current.Email = in.Email
			current.Role = in.Role
			if hash != "" {
				current.PasswordHash = hash
			}

			u, err := users.Update(ctx, current)
			if err != nil {
				return model.UserView{}, err
			}
			return u.View(), nil
		}, PathUsers)

	c.RemoveUser = New(deps, policy.RemoveUser, removeSchema,
		func(ctx context.Context, claims model.Claims, in RemoveInput) (Removed, error) {
			if in.ID == claims.SubjectID {
				return Removed{}, restricted("you cannot remove your own account")
			}
			if err := users.Remove(ctx, in.ID); err != nil {
				return Removed{}, err
			}
			return Removed{ID: in.ID}, nil
		}, PathUsers)
}

// uniqueEmail rejects an e-mail already used by another user.
// Stored e-mails are lower-cased on input.
func uniqueEmail(ctx context.Context, users store.Store[model.User], email, exceptID string) error {
	all, err := users.List(ctx)
	if err != nil {
		return err
	}
	for _, u := range all {
		if u.ID != exceptID && u.Email == email {
			return validator.Field("email", "a user with this email already exists")
		}
	}
	return nil
}
