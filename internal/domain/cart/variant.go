package cart

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	plainExtrasKey = "plain"
	noNoteKey      = "noNote"
)

// NormalizeExtras converts caller extras into well-typed extras, defaulting a missing price to zero
func NormalizeExtras(extras []ExtraInput) []Extra {
	normalized := make([]Extra, 0, len(extras))
	for _, extra := range extras {
		price := decimal.Zero
		if extra.Price != nil {
			price = *extra.Price
		}
		normalized = append(normalized, Extra{
			Key:   extra.Key,
			Label: extra.Label,
			Price: price,
		})
	}
	return normalized
}

// VariantKey derives the deduplication key of an item configuration.
// Extras keys are sorted so selection order never matters.
func VariantKey(item *Item, extras []Extra, notes string) string {
	keys := make([]string, 0, len(extras))
	for _, extra := range extras {
		keys = append(keys, extra.Key)
	}
	sort.Strings(keys)

	extrasKey := strings.Join(keys, "|")
	if extrasKey == "" {
		extrasKey = plainExtrasKey
	}

	noteKey := strings.TrimSpace(notes)
	if noteKey == "" {
		noteKey = noNoteKey
	}

	return itemIdentity(item) + "-" + extrasKey + "-" + noteKey
}

func itemIdentity(item *Item) string {
	if item.ID != "" {
		return item.ID
	}
	return item.Title
}

func sumExtras(extras []Extra) decimal.Decimal {
	total := decimal.Zero
	for _, extra := range extras {
		total = total.Add(extra.Price)
	}
	return total
}
