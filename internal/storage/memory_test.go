package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SetGet(t *testing.T) {
	m := NewMemory()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	require.NoError(t, m.Set("k1", payload{Name: "a", Count: 3}))

	var got payload
	require.NoError(t, m.Get("k1", &got))
	assert.Equal(t, payload{Name: "a", Count: 3}, got)

	// Overwrite.
	require.NoError(t, m.Set("k1", payload{Name: "b"}))
	require.NoError(t, m.Get("k1", &got))
	assert.Equal(t, "b", got.Name)
}

func TestMemory_GetMissing(t *testing.T) {
	m := NewMemory()
	var out string
	assert.ErrorIs(t, m.Get("absent", &out), ErrNotFound)
}

func TestMemory_Remove(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Set("k1", "v"))
	require.NoError(t, m.Remove("k1"))

	var out string
	assert.ErrorIs(t, m.Get("k1", &out), ErrNotFound)

	// Removing an absent key is a no-op.
	require.NoError(t, m.Remove("k1"))
}

func TestMemory_KeysByPrefix(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Set("linecal_schedules_u1", "a"))
	require.NoError(t, m.Set("linecal_prefs_u1", "b"))
	require.NoError(t, m.Set("other", "c"))

	keys, err := m.Keys("linecal_")
	require.NoError(t, err)
	assert.Equal(t, []string{"linecal_prefs_u1", "linecal_schedules_u1"}, keys)
}

func TestMemory_QuotaExceeded(t *testing.T) {
	m := NewMemory()
	m.MaxValueBytes = 8

	require.NoError(t, m.Set("small", "ok"))
	err := m.Set("big", "a much longer value that exceeds the cap")
	require.ErrorIs(t, err, ErrQuotaExceeded)

	// The oversized write left no trace.
	var out string
	assert.ErrorIs(t, m.Get("big", &out), ErrNotFound)
}

func TestMemory_Stats(t *testing.T) {
	m := NewMemory()
	st, err := m.Stats()
	require.NoError(t, err)
	assert.Equal(t, 0, st.Items)

	require.NoError(t, m.Set("k1", "v1"))
	require.NoError(t, m.Set("k2", "v2"))

	st, err = m.Stats()
	require.NoError(t, err)
	assert.Equal(t, 2, st.Items)
	assert.Greater(t, st.Bytes, int64(0))
}
