// Package checklist holds the fixed pre-flight checklist catalog, the
// per-session checked/comment state and the score rules applied on submission.
package checklist

import (
	"errors"
	"strings"
)

var ErrItemNotFound = errors.New("checklist: item not found")

// Item is a single yes/no checklist entry with an optional free-text comment.
type Item struct {
	ID      string
	Text    string
	Checked bool
	Comment string
}

// Category groups five items under one of the four risk dimensions. Item
// order is significant and mirrors the catalog.
type Category struct {
	ID          string
	Title       string
	Emoji       string
	Description string
	Items       []Item
}

// Score is the number of checked items, always within [0, len(Items)].
// The source product computed 5-(5-checked), which reduces to the same value.
func (c Category) Score() int {
	n := 0
	for _, it := range c.Items {
		if it.Checked {
			n++
		}
	}
	return n
}

// Checklist is the mutable session state over the fixed catalog. The zero
// value is not usable; construct with New.
type Checklist struct {
	categories []Category
}

// New returns a checklist seeded from the built-in catalog with every item
// unchecked.
func New() *Checklist {
	return &Checklist{categories: Catalog()}
}

// Categories returns the categories in catalog order. Callers must not
// mutate the returned slice.
func (c *Checklist) Categories() []Category { return c.categories }

// SetChecked marks an item checked or unchecked.
func (c *Checklist) SetChecked(categoryID, itemID string, checked bool) error {
	it, err := c.find(categoryID, itemID)
	if err != nil {
		return err
	}
	it.Checked = checked
	return nil
}

// SetComment attaches a free-text comment to an item.
func (c *Checklist) SetComment(categoryID, itemID, comment string) error {
	it, err := c.find(categoryID, itemID)
	if err != nil {
		return err
	}
	it.Comment = comment
	return nil
}

func (c *Checklist) find(categoryID, itemID string) (*Item, error) {
	for ci := range c.categories {
		if c.categories[ci].ID != categoryID {
			continue
		}
		for ii := range c.categories[ci].Items {
			if c.categories[ci].Items[ii].ID == itemID {
				return &c.categories[ci].Items[ii], nil
			}
		}
	}
	return nil, ErrItemNotFound
}

// Scores returns the category scores keyed by category id.
func (c *Checklist) Scores() map[string]int {
	scores := make(map[string]int, len(c.categories))
	for _, cat := range c.categories {
		scores[cat.ID] = cat.Score()
	}
	return scores
}

// BuildMitigationPlan appends every non-blank item comment to the base plan
// as "<TITLE> - <item text>: <comment>" lines under a "Detalhes:" header, in
// catalog order. With no comments the base plan is returned unchanged.
func (c *Checklist) BuildMitigationPlan(basePlan string) string {
	var details []string
	for _, cat := range c.categories {
		for _, it := range cat.Items {
			if strings.TrimSpace(it.Comment) == "" {
				continue
			}
			details = append(details, cat.Title+" - "+it.Text+": "+it.Comment)
		}
	}
	if len(details) == 0 {
		return basePlan
	}
	return basePlan + "\n\nDetalhes:\n" + strings.Join(details, "\n")
}
