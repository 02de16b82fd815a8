// Package list holds the derived-view computations over a loaded item slice:
// free-text filtering, duplicate lookup, price aggregation, and the sort keys
// of the active shopping list. Everything here is pure; callers re-run these
// on every reload.
package list

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/dstrobel/einkauf/internal/dateutil"
	"github.com/dstrobel/einkauf/internal/model"
)

// SortKey selects the active-list ordering. The empty key keeps insertion
// order as loaded from the store.
type SortKey string

const (
	SortNone        SortKey = ""
	SortName        SortKey = "name"
	SortSupermarket SortKey = "supermarket"
	SortAdded       SortKey = "added"
)

// ParsePrice reads a stored price leniently. Prices live in the store as
// free-form decimal strings; absent or non-numeric content counts as 0 and is
// never an error.
func ParsePrice(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

// Total sums price × amount over the slice.
func Total(items []model.Item) float64 {
	var sum float64
	for _, it := range items {
		sum += ParsePrice(it.Price) * float64(it.Amount)
	}
	return sum
}

// FormatPrice renders a computed amount with two decimals.
func FormatPrice(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// Filter returns the items whose name contains term, case-insensitively.
// A blank term returns the full slice.
func Filter(items []model.Item, term string) []model.Item {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return items
	}
	var out []model.Item
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.Name), term) {
			out = append(out, it)
		}
	}
	return out
}

// ExactMatch returns the first item whose name equals the given name under
// case-insensitive comparison, or nil. This is the guard that keeps the
// creation form from inserting duplicates.
func ExactMatch(items []model.Item, name string) *model.Item {
	name = strings.TrimSpace(name)
	for i := range items {
		if strings.EqualFold(items[i].Name, name) {
			return &items[i]
		}
	}
	return nil
}

// Sort returns a sorted copy of the slice. Name and supermarket compare with
// German collation (case-insensitive); supermarket ties break by name; added
// orders newest first with absent timestamps treated as the epoch.
func Sort(items []model.Item, key SortKey) []model.Item {
	out := make([]model.Item, len(items))
	copy(out, items)
	if key == SortNone {
		return out
	}

	coll := collate.New(language.German, collate.IgnoreCase)
	switch key {
	case SortName:
		sort.SliceStable(out, func(i, j int) bool {
			return coll.CompareString(out[i].Name, out[j].Name) < 0
		})
	case SortSupermarket:
		sort.SliceStable(out, func(i, j int) bool {
			a, b := supermarketOf(out[i]), supermarketOf(out[j])
			if c := coll.CompareString(a, b); c != 0 {
				return c < 0
			}
			return coll.CompareString(out[i].Name, out[j].Name) < 0
		})
	case SortAdded:
		sort.SliceStable(out, func(i, j int) bool {
			return dateutil.Parse(out[i].AddedAt).After(dateutil.Parse(out[j].AddedAt))
		})
	}
	return out
}

func supermarketOf(it model.Item) string {
	if it.Supermarket == nil {
		return ""
	}
	return strings.TrimSpace(*it.Supermarket)
}
