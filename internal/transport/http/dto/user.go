package dto

import (
	"strconv"

	"user_hub/internal/domain/models"
)

type UserRegisterInput struct {
	FirstName string `json:"first_name" validate:"required,min=1,max=100"`
	LastName  string `json:"last_name" validate:"required,min=1,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=64"`
}

func (input UserRegisterInput) ToDomain(passwordHash []byte) models.User {
	return models.User{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Password:  passwordHash,
		Status:    models.StatusActive,
	}
}

type UserUpdateInput struct {
	FirstName *string `json:"first_name,omitempty" validate:"omitempty,min=1,max=100"`
	LastName  *string `json:"last_name,omitempty" validate:"omitempty,min=1,max=100"`
	Status    *int    `json:"status,omitempty" validate:"omitempty,min=0"`
}

// Updates maps set fields to their column names; nil fields stay untouched.
func (input UserUpdateInput) Updates() map[string]interface{} {
	updates := make(map[string]interface{})

	if input.FirstName != nil {
		updates["first_name"] = *input.FirstName
	}
	if input.LastName != nil {
		updates["last_name"] = *input.LastName
	}
	if input.Status != nil {
		updates["status"] = *input.Status
	}

	return updates
}

// ListUsersQuery binds paging as raw strings so a malformed value counts as
// absent instead of failing the bind.
type ListUsersQuery struct {
	Page    string `query:"page"`
	PerPage string `query:"items_per_page"`
	Search  string `query:"search"`
}

// Paging coerces the raw values; anything unparsable comes back 0 and is
// normalized to the defaults downstream.
func (q ListUsersQuery) Paging() (page, perPage int) {
	page, _ = strconv.Atoi(q.Page)
	perPage, _ = strconv.Atoi(q.PerPage)
	return page, perPage
}
