package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActive(t *testing.T) {
	list := []Target{
		{ID: "a", Enabled: true, Address: "https://x"},
		{ID: "b", Enabled: false, Address: "https://y"},
		{ID: "c", Enabled: true, Address: "  "},
		{ID: "d", Enabled: true, Address: "https://z"},
	}

	active := Active(list)
	require.Len(t, active, 2)
	assert.Equal(t, "a", active[0].ID)
	assert.Equal(t, "d", active[1].ID)

	assert.Empty(t, Active(nil))
}

func TestNewTarget(t *testing.T) {
	a, b := NewTarget(), NewTarget()
	assert.NotEqual(t, a.ID, b.ID)
	assert.True(t, a.Enabled)
	assert.Empty(t, a.Name)
	assert.Empty(t, a.Address)
	assert.False(t, a.IsActive(), "a target without an address is never active")
}

func TestSuggested(t *testing.T) {
	list := Suggested()
	require.Len(t, list, 5)
	assert.Equal(t, "Apple Screen Time", list[0].Name)
	assert.Equal(t, "https://pcps-adapter.amazon.example/v1/family", list[4].Address)
	for _, tg := range list {
		assert.False(t, tg.Enabled)
		assert.NotEmpty(t, tg.ID)
	}
	assert.NotEqual(t, list[0].ID, Suggested()[0].ID)
}

func TestTargetJSON(t *testing.T) {
	out, err := json.Marshal(Target{ID: "a", Name: "", Address: "https://x", Enabled: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"a","name":"","endpoint":"https://x","enabled":true}`, string(out))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Apple", Target{Name: "Apple", Address: "https://x"}.DisplayName())
	assert.Equal(t, "https://x", Target{Address: "https://x"}.DisplayName())
}
