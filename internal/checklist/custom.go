package checklist

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrChecklistNotFound = errors.New("checklist: custom checklist not found")

// DefaultCustomTitle is used when a checklist is created with a blank title.
const DefaultCustomTitle = "Novo Checklist"

// CustomItem is one entry of a user-defined checklist.
type CustomItem struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Checked bool   `json:"isChecked"`
}

// CustomChecklist is a user-defined checklist. It lives only in the local
// store; there is no backend sync.
type CustomChecklist struct {
	ID        string
	Title     string
	Items     []CustomItem
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CustomStore is the persistence surface the local store provides for
// user-defined checklists.
type CustomStore interface {
	UpsertCustomChecklist(ctx context.Context, c CustomChecklist) error
	CustomChecklist(ctx context.Context, id string) (CustomChecklist, error)
	ListCustomChecklists(ctx context.Context) ([]CustomChecklist, error)
	DeleteCustomChecklist(ctx context.Context, id string) error
}

// CustomManager wraps the store with the edit operations the product exposes.
type CustomManager struct {
	store CustomStore
	now   func() time.Time
}

// NewCustomManager constructs a manager. A nil now falls back to time.Now.
func NewCustomManager(store CustomStore, now func() time.Time) *CustomManager {
	if now == nil {
		now = time.Now
	}
	return &CustomManager{store: store, now: now}
}

// Create returns a new unsaved checklist. A blank title gets the default one.
func (m *CustomManager) Create(title string) CustomChecklist {
	if strings.TrimSpace(title) == "" {
		title = DefaultCustomTitle
	}
	ts := m.now()
	return CustomChecklist{
		ID:        uuid.NewString(),
		Title:     title,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
}

// Load fetches a checklist by id.
func (m *CustomManager) Load(ctx context.Context, id string) (CustomChecklist, error) {
	return m.store.CustomChecklist(ctx, id)
}

// List returns all saved checklists, most recently updated first.
func (m *CustomManager) List(ctx context.Context) ([]CustomChecklist, error) {
	return m.store.ListCustomChecklists(ctx)
}

// Save upserts the checklist, stamping UpdatedAt.
func (m *CustomManager) Save(ctx context.Context, c *CustomChecklist) error {
	c.UpdatedAt = m.now()
	return m.store.UpsertCustomChecklist(ctx, *c)
}

// Delete removes a checklist by id.
func (m *CustomManager) Delete(ctx context.Context, id string) error {
	return m.store.DeleteCustomChecklist(ctx, id)
}

// AddItem appends a new unchecked item.
func (m *CustomManager) AddItem(c *CustomChecklist, text string) {
	c.Items = append(c.Items, CustomItem{ID: uuid.NewString(), Text: text})
	c.UpdatedAt = m.now()
}

// RemoveItem deletes the item with the given id, if present.
func (m *CustomManager) RemoveItem(c *CustomChecklist, itemID string) {
	kept := c.Items[:0]
	for _, it := range c.Items {
		if it.ID != itemID {
			kept = append(kept, it)
		}
	}
	c.Items = kept
	c.UpdatedAt = m.now()
}

// ToggleItem flips the checked state of the item with the given id.
func (m *CustomManager) ToggleItem(c *CustomChecklist, itemID string) error {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			c.Items[i].Checked = !c.Items[i].Checked
			c.UpdatedAt = m.now()
			return nil
		}
	}
	return ErrItemNotFound
}

// Rename sets a new title.
func (m *CustomManager) Rename(c *CustomChecklist, title string) {
	c.Title = title
	c.UpdatedAt = m.now()
}
