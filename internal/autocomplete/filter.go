package autocomplete

import "strings"

// NormalizeQuery lowercases and trims a raw search value.
func NormalizeQuery(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// Matches reports whether the normalized query q is a substring of the item's
// name, item code, SKU or HSN code, ignoring case.
func (it Item) Matches(q string) bool {
	return containsFold(it.Name, q) ||
		containsFold(it.ItemCode, q) ||
		containsFold(it.SKU, q) ||
		containsFold(it.HSNCode, q)
}

func containsFold(field, q string) bool {
	return field != "" && strings.Contains(strings.ToLower(field), q)
}

// Filter returns the items matching query in their original order, at most
// limit of them. A limit <= 0 returns every match; an empty query returns none.
func Filter(items []Item, query string, limit int) []Item {
	q := NormalizeQuery(query)
	if q == "" {
		return nil
	}
	var out []Item
	for _, it := range items {
		if !it.Matches(q) {
			continue
		}
		out = append(out, it)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
