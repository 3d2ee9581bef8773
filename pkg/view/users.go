package view

import (
	"acumenus/startpage-api/internal/model"
	"slices"
	"strings"
)

// UserTable is the admin user list with a filter on username or email
type UserTable struct {
	users  []model.PublicUser
	filter string
}

func NewUserTable(users []model.PublicUser) *UserTable {
	return &UserTable{users: slices.Clone(users)}
}

func (t *UserTable) SetFilter(f string) {
	t.filter = strings.ToLower(strings.TrimSpace(f))
}

func (t *UserTable) Rows() []model.PublicUser {
	if t.filter == "" {
		return slices.Clone(t.users)
	}

	out := make([]model.PublicUser, 0, len(t.users))
	for _, u := range t.users {
		if strings.Contains(strings.ToLower(u.Username), t.filter) ||
			strings.Contains(strings.ToLower(u.Email), t.filter) {
			out = append(out, u)
		}
	}

	return out
}

func (t *UserTable) Upsert(u model.PublicUser) {
	i := slices.IndexFunc(t.users, func(x model.PublicUser) bool { return x.ID == u.ID })
	if i >= 0 {
		t.users[i] = u
		return
	}

	t.users = append(t.users, u)
}

func (t *UserTable) Remove(id uint) {
	t.users = slices.DeleteFunc(t.users, func(u model.PublicUser) bool { return u.ID == id })
}
