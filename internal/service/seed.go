package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/balcao/balcao/internal/model"
	"github.com/balcao/balcao/internal/store"
	"github.com/balcao/balcao/internal/validator"
)

// ErrAlreadySeeded is returned when a root user already exists.
var ErrAlreadySeeded = errors.New("a root user already exists")

// RootAccount describes the first root user.
type RootAccount struct {
	Name     string `json:"name" validate:"required,min=3,max=100"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" schema:"notrim" validate:"required,min=8,max=128"`
}

// Normalize lower-cases the e-mail.
func (a *RootAccount) Normalize() {
	a.Email = strings.ToLower(a.Email)
}

var rootAccountSchema = validator.New[RootAccount]()

// SeedRoot creates the first root user, stamped with seedIdentity as its
// creator since no authenticated principal exists yet.
func SeedRoot(ctx context.Context, users store.Store[model.User], passwords Passwords, seedIdentity string, raw []byte) (model.UserView, error) {
	account, err := rootAccountSchema.Validate(raw)
	if err != nil {
		return model.UserView{}, err
	}

	all, err := users.List(ctx)
	if err != nil {
		return model.UserView{}, fmt.Errorf("list users: %w", err)
	}
	for _, u := range all {
		if u.Role == model.RoleRoot {
			return model.UserView{}, ErrAlreadySeeded
		}
		if u.Email == account.Email {
			return model.UserView{}, validator.Field("email", "a user with this email already exists")
		}
	}

	hash, err := passwords.Hash(account.Password)
	if err != nil {
		return model.UserView{}, fmt.Errorf("hash password: %w", err)
	}

	u, err := users.Add(ctx, seedIdentity, model.User{
		Name:         account.Name,
		Email:        account.Email,
		Role:         model.RoleRoot,
		PasswordHash: hash,
	})
	if err != nil {
		return model.UserView{}, fmt.Errorf("add root user: %w", err)
	}
	return u.View(), nil
}
