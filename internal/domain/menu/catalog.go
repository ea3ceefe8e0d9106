package menu

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jsephandrade/technomart-mobile-app/internal/domain/cart"
)

var (
	ErrItemNotFound   = errors.New("menu item not found")
	ErrUnknownExtra   = errors.New("unknown extra option")
	ErrInvalidSegment = errors.New("invalid menu segment")
)

//go:embed catalog.json
var defaultCatalog []byte

type catalogFile struct {
	Recommended []MenuItem    `json:"recommended"`
	Menu        []MenuItem    `json:"menu"`
	AddOns      []MenuItem    `json:"addons"`
	Extras      []ExtraOption `json:"extras"`
}

// Catalog is the read-only menu of the canteen
type Catalog struct {
	recommended []MenuItem
	menu        []MenuItem
	addOns      []MenuItem
	extras      []ExtraOption
	byID        map[string]MenuItem
	extrasByKey map[string]ExtraOption
}

// DefaultCatalog loads the catalog bundled with the binary
func DefaultCatalog() (*Catalog, error) {
	return Load(strings.NewReader(string(defaultCatalog)))
}

// Load reads a catalog from JSON
func Load(r io.Reader) (*Catalog, error) {
	var file catalogFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to decode menu catalog: %w", err)
	}

	c := &Catalog{
		recommended: file.Recommended,
		menu:        file.Menu,
		addOns:      file.AddOns,
		extras:      file.Extras,
		byID:        make(map[string]MenuItem),
		extrasByKey: make(map[string]ExtraOption),
	}

	for _, group := range [][]MenuItem{file.Recommended, file.Menu, file.AddOns} {
		for _, item := range group {
			if item.ID == "" {
				return nil, fmt.Errorf("menu item %q has no id", item.Title)
			}
			if _, dup := c.byID[item.ID]; dup {
				return nil, fmt.Errorf("duplicate menu item id %q", item.ID)
			}
			c.byID[item.ID] = item
		}
	}
	for _, extra := range file.Extras {
		c.extrasByKey[extra.Key] = extra
	}

	return c, nil
}

// Items lists the items of a segment; SegmentAll returns recommended items followed by the menu
func (c *Catalog) Items(segment Segment) ([]MenuItem, error) {
	switch segment {
	case SegmentAll:
		all := make([]MenuItem, 0, len(c.recommended)+len(c.menu))
		all = append(all, c.recommended...)
		return append(all, c.menu...), nil
	case SegmentRecommended:
		return append([]MenuItem(nil), c.recommended...), nil
	case SegmentMenu:
		return append([]MenuItem(nil), c.menu...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidSegment, segment)
	}
}

// FilterByCategory lists the items of a segment tagged with category
func (c *Catalog) FilterByCategory(segment Segment, category string) ([]MenuItem, error) {
	items, err := c.Items(segment)
	if err != nil || category == "" {
		return items, err
	}

	filtered := make([]MenuItem, 0, len(items))
	for _, item := range items {
		if item.HasCategory(category) {
			filtered = append(filtered, item)
		}
	}
	return filtered, nil
}

// Search matches the query against titles and descriptions, ignoring case.
// A blank query returns every item.
func (c *Catalog) Search(query string) []MenuItem {
	all, _ := c.Items(SegmentAll)
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return all
	}

	results := make([]MenuItem, 0)
	for _, item := range all {
		if strings.Contains(strings.ToLower(item.Title), q) ||
			strings.Contains(strings.ToLower(item.Description), q) {
			results = append(results, item)
		}
	}
	return results
}

// Find looks up any item, add-ons included, by id
func (c *Catalog) Find(id string) (MenuItem, error) {
	item, ok := c.byID[id]
	if !ok {
		return MenuItem{}, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	return item, nil
}

// AddOns lists the quick add-ons suggested in the cart
func (c *Catalog) AddOns() []MenuItem {
	return append([]MenuItem(nil), c.addOns...)
}

// ExtraOptions lists the extras selectable when customising an item
func (c *Catalog) ExtraOptions() []ExtraOption {
	return append([]ExtraOption(nil), c.extras...)
}

// ResolveExtras maps selected extra keys to priced cart extras, keeping selection order
func (c *Catalog) ResolveExtras(keys []string) ([]cart.ExtraInput, error) {
	extras := make([]cart.ExtraInput, 0, len(keys))
	for _, key := range keys {
		option, ok := c.extrasByKey[key]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownExtra, key)
		}
		price := option.Price
		extras = append(extras, cart.ExtraInput{Key: option.Key, Label: option.Label, Price: &price})
	}
	return extras, nil
}
