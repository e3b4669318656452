package checklist

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCustomStore keeps checklists in a map.
type fakeCustomStore struct {
	lists map[string]CustomChecklist
}

func newFakeCustomStore() *fakeCustomStore {
	return &fakeCustomStore{lists: map[string]CustomChecklist{}}
}

func (s *fakeCustomStore) UpsertCustomChecklist(_ context.Context, c CustomChecklist) error {
	s.lists[c.ID] = c
	return nil
}

func (s *fakeCustomStore) CustomChecklist(_ context.Context, id string) (CustomChecklist, error) {
	c, ok := s.lists[id]
	if !ok {
		return CustomChecklist{}, ErrChecklistNotFound
	}
	return c, nil
}

func (s *fakeCustomStore) ListCustomChecklists(_ context.Context) ([]CustomChecklist, error) {
	out := make([]CustomChecklist, 0, len(s.lists))
	for _, c := range s.lists {
		out = append(out, c)
	}
	return out, nil
}

func (s *fakeCustomStore) DeleteCustomChecklist(_ context.Context, id string) error {
	delete(s.lists, id)
	return nil
}

func TestCreateDefaultsTitle(t *testing.T) {
	m := NewCustomManager(newFakeCustomStore(), nil)

	c := m.Create("  ")
	assert.Equal(t, DefaultCustomTitle, c.Title)
	assert.NotEmpty(t, c.ID)

	c2 := m.Create("Pré-voo noturno")
	assert.Equal(t, "Pré-voo noturno", c2.Title)
	assert.NotEqual(t, c.ID, c2.ID)
}

func TestCustomLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newFakeCustomStore()
	ts := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	m := NewCustomManager(store, func() time.Time { return ts })

	c := m.Create("Hangar")
	m.AddItem(&c, "Fechar portas")
	m.AddItem(&c, "Cobrir pitot")
	require.NoError(t, m.Save(ctx, &c))

	loaded, err := m.Load(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 2)
	assert.Equal(t, "Fechar portas", loaded.Items[0].Text)
	assert.False(t, loaded.Items[0].Checked)

	require.NoError(t, m.ToggleItem(&loaded, loaded.Items[0].ID))
	assert.True(t, loaded.Items[0].Checked)
	assert.ErrorIs(t, m.ToggleItem(&loaded, "missing"), ErrItemNotFound)

	m.RemoveItem(&loaded, loaded.Items[1].ID)
	assert.Len(t, loaded.Items, 1)

	m.Rename(&loaded, "Hangar fechado")
	require.NoError(t, m.Save(ctx, &loaded))

	again, err := m.Load(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hangar fechado", again.Title)

	require.NoError(t, m.Delete(ctx, c.ID))
	_, err = m.Load(ctx, c.ID)
	assert.ErrorIs(t, err, ErrChecklistNotFound)
}
