package content

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateID is returned when two items share an id
	ErrDuplicateID = errors.New("duplicate content item id")
	// ErrMissingID is returned when an item has no id
	ErrMissingID = errors.New("content item without id")
	// ErrItemNotFound is returned by lookups for unknown ids
	ErrItemNotFound = errors.New("content item not found")
)

// Identity is the desktop's branding shown by the screensaver and title
type Identity struct {
	Name    string `json:"name" yaml:"name"`
	Tagline string `json:"tagline" yaml:"tagline"`
}

// Tree is the immutable desktop content for one session
type Tree struct {
	identity Identity
	desktop  []*Item
	index    map[string]*Item
}

// NewTree indexes the desktop items, rejecting missing or duplicated ids
func NewTree(identity Identity, desktop []*Item) (*Tree, error) {
	t := &Tree{
		identity: identity,
		desktop:  desktop,
		index:    make(map[string]*Item),
	}

	var walk func(items []*Item, path string) error
	walk = func(items []*Item, path string) error {
		for pos, item := range items {
			if item == nil {
				continue
			}
			if item.ID == "" {
				return fmt.Errorf("%w at %s[%d]", ErrMissingID, path, pos)
			}
			if _, exists := t.index[item.ID]; exists {
				return fmt.Errorf("%w: %q", ErrDuplicateID, item.ID)
			}
			t.index[item.ID] = item
			if err := walk(item.Children, path+"/"+item.ID); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(desktop, "desktop"); err != nil {
		return nil, err
	}
	return t, nil
}

// Identity returns the desktop's branding
func (t *Tree) Identity() Identity {
	return t.identity
}

// Desktop returns the top-level items in display order
func (t *Tree) Desktop() []*Item {
	out := make([]*Item, 0, len(t.desktop))
	for _, item := range t.desktop {
		if item != nil {
			out = append(out, item)
		}
	}
	return out
}

// Find looks an item up anywhere in the tree
func (t *Tree) Find(id string) (*Item, error) {
	item, ok := t.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrItemNotFound, id)
	}
	return item, nil
}

// Len returns the number of items in the tree
func (t *Tree) Len() int {
	return len(t.index)
}

// Walk visits every item depth-first in display order, passing its depth
func (t *Tree) Walk(fn func(item *Item, depth int)) {
	var walk func(items []*Item, depth int)
	walk = func(items []*Item, depth int) {
		for _, item := range items {
			if item == nil {
				continue
			}
			fn(item, depth)
			walk(item.Children, depth+1)
		}
	}
	walk(t.desktop, 0)
}
