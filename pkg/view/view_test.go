package view

import (
	"acumenus/startpage-api/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func links() []model.Link {
	return []model.Link{
		{ID: "1", Name: "Atlas", Description: "Cohort builder", RelatedApps: []string{"2", "99", "3"}},
		{ID: "2", Name: "Achilles", Description: "Data characterization"},
		{ID: "3", Name: "WhiteRabbit", Description: "Scan source data for ATLAS"},
	}
}

func names(ls []model.Link) []string {
	out := make([]string, 0, len(ls))
	for _, l := range ls {
		out = append(out, l.Name)
	}
	return out
}

func TestSearch(t *testing.T) {
	d := NewDirectory(links())

	assert.Len(t, d.Visible(), 3)

	d.SetSearch("  atlas ")
	assert.Equal(t, "atlas", d.Search())
	assert.Equal(t, []string{"Atlas", "WhiteRabbit"}, names(d.Visible()))

	d.SetSearch("CHARACTER")
	assert.Equal(t, []string{"Achilles"}, names(d.Visible()))

	d.SetSearch("nothing")
	assert.Empty(t, d.Visible())
}

func TestSelectAndRelated(t *testing.T) {
	d := NewDirectory(links())

	_, ok := d.Selected()
	assert.False(t, ok)
	assert.Nil(t, d.Related())

	assert.False(t, d.Select("42"))
	require.True(t, d.Select("1"))

	sel, ok := d.Selected()
	require.True(t, ok)
	assert.Equal(t, "Atlas", sel.Name)

	// 99 does not resolve and is skipped
	assert.Equal(t, []string{"Achilles", "WhiteRabbit"}, names(d.Related()))

	d.ClearSelection()
	_, ok = d.Selected()
	assert.False(t, ok)
}

func TestLocalMutations(t *testing.T) {
	d := NewDirectory(links())
	require.True(t, d.Select("1"))

	d.Upsert(model.Link{ID: "4", Name: "Hades"})
	assert.Equal(t, 4, d.Len())

	d.Upsert(model.Link{ID: "2", Name: "Achilles v2"})
	assert.Equal(t, 4, d.Len())
	assert.Equal(t, []string{"Achilles v2", "WhiteRabbit"}, names(d.Related()))

	d.Remove("3")
	assert.Equal(t, []string{"Achilles v2"}, names(d.Related()))

	d.Remove("1")
	_, ok := d.Selected()
	assert.False(t, ok)
	assert.Equal(t, 2, d.Len())

	d.Remove("missing")
	assert.Equal(t, 2, d.Len())
}

func TestResetDropsStaleSelection(t *testing.T) {
	d := NewDirectory(links())
	require.True(t, d.Select("2"))

	d.Reset(links()[:2])
	_, ok := d.Selected()
	assert.True(t, ok)

	d.Reset(links()[:1])
	_, ok = d.Selected()
	assert.False(t, ok)
}

func TestUserTable(t *testing.T) {
	u := NewUserTable([]model.PublicUser{
		{ID: 1, Username: "admin", Email: "admin@example.com", IsAdmin: true},
		{ID: 2, Username: "jane", Email: "jane@corp.example.com"},
	})

	assert.Len(t, u.Rows(), 2)

	u.SetFilter("CORP")
	rows := u.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "jane", rows[0].Username)

	u.SetFilter("adm")
	require.Len(t, u.Rows(), 1)

	u.SetFilter("")
	u.Upsert(model.PublicUser{ID: 2, Username: "janet", Email: "jane@corp.example.com"})
	u.Upsert(model.PublicUser{ID: 3, Username: "bob", Email: "bob@example.com"})
	rows = u.Rows()
	require.Len(t, rows, 3)
	assert.Equal(t, "janet", rows[1].Username)

	u.Remove(2)
	assert.Len(t, u.Rows(), 2)
}
