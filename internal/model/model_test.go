package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexIDAcceptsNumbersAndStrings(t *testing.T) {
	var ids []FlexID
	require.NoError(t, json.Unmarshal([]byte(`[3, "12", 0]`), &ids))
	assert.Equal(t, []FlexID{3, 12, 0}, ids)

	out, err := json.Marshal(ids)
	require.NoError(t, err)
	assert.JSONEq(t, `["3","12","0"]`, string(out))
}

func TestFlexIDRejectsGarbage(t *testing.T) {
	for _, in := range []string{`"abc"`, `"-1"`, `true`, `{}`, `1.5`} {
		var id FlexID
		assert.Error(t, json.Unmarshal([]byte(in), &id), in)
	}
}

func TestViewDeduplicatesFeatures(t *testing.T) {
	users := int64(40)
	a := ApplicationLink{
		ID:   7,
		Name: "Atlas",
		URL:  "https://atlas.example.com",
		Features: []Feature{
			{Feature: "search"},
			{Feature: "export"},
			{Feature: "search"},
		},
		Screenshots: []Screenshot{{ScreenshotURL: "a.png"}},
		Metrics:     &UsageMetric{Users: &users},
		Related:     []RelatedApp{{RelatedApplicationID: 2}, {RelatedApplicationID: 99}},
	}

	l := a.View()

	assert.Equal(t, "7", l.ID)
	assert.Equal(t, []string{"search", "export"}, l.Features)
	assert.Equal(t, []string{"a.png"}, l.Screenshots)
	assert.Equal(t, []string{"2", "99"}, l.RelatedApps)
	require.NotNil(t, l.UsageMetrics.Users)
	assert.EqualValues(t, 40, *l.UsageMetrics.Users)
	assert.Nil(t, l.UsageMetrics.Stars)
}

func TestViewWithoutCollections(t *testing.T) {
	a := ApplicationLink{ID: 1, Name: "Bare", URL: "https://bare"}

	out, err := json.Marshal(a.View())
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(out, &m))
	assert.Equal(t, []any{}, m["features"])
	assert.Equal(t, []any{}, m["screenshots"])
	assert.Equal(t, []any{}, m["relatedApps"])
	assert.Equal(t, map[string]any{}, m["usageMetrics"])
	assert.Nil(t, m["githubUrl"])
}

func TestPublicUserHasNoCredential(t *testing.T) {
	hash := "$argon2id$secret"
	u := User{ID: 4, Username: "jane", Email: "jane@example.com", PasswordHash: &hash, CreatedAt: time.Now()}

	out, err := json.Marshal(u.Public())
	require.NoError(t, err)
	assert.NotContains(t, string(out), "argon2id")
	assert.NotContains(t, string(out), "password")
	assert.Contains(t, string(out), `"isAdmin":false`)
	assert.Contains(t, string(out), `"createdAt"`)
}
