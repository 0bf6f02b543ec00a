package usecase

import (
	"strings"

	"cf-bulk-manager/internal/domain"
)

// FilterMode selects how a zone filter query is interpreted
type FilterMode string

const (
	// FilterSimple treats the query as one case-insensitive substring
	FilterSimple FilterMode = "simple"
	// FilterBulk splits the query on newlines/commas/spaces and matches a
	// zone when ANY term is contained in its name
	FilterBulk FilterMode = "bulk"
)

// FilterZones derives the filtered view of the cached zone list. A blank
// query returns the full list. Input order is preserved.
func FilterZones(zones []domain.Zone, mode FilterMode, query string) []domain.Zone {
	if strings.TrimSpace(query) == "" {
		return zones
	}

	var terms []string
	if mode == FilterBulk {
		for _, t := range domain.ParseDomainList(query) {
			terms = append(terms, strings.ToLower(t))
		}
	} else {
		terms = []string{strings.ToLower(strings.TrimSpace(query))}
	}

	var out []domain.Zone
	for _, z := range zones {
		name := strings.ToLower(z.Name)
		for _, t := range terms {
			if strings.Contains(name, t) {
				out = append(out, z)
				break
			}
		}
	}
	return out
}

// PaginateZones returns the fixed-size window for a 1-based page number.
// Callers must reset the page to 1 whenever the filter query or mode
// changes, or the window can point past the new result count.
func PaginateZones(zones []domain.Zone, pageSize, page int) []domain.Zone {
	if pageSize <= 0 || page <= 0 {
		return nil
	}
	start := (page - 1) * pageSize
	if start >= len(zones) {
		return nil
	}
	end := start + pageSize
	if end > len(zones) {
		end = len(zones)
	}
	return zones[start:end]
}

// TotalPages returns the page count for a filtered list, at least 1
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 {
		return 1
	}
	pages := (total + pageSize - 1) / pageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// ToggleSelection flips one zone id's membership, returning a new set.
// Toggling twice restores the original membership.
func ToggleSelection(selected map[string]bool, id string) map[string]bool {
	out := make(map[string]bool, len(selected)+1)
	for k, v := range selected {
		if v {
			out[k] = true
		}
	}
	if out[id] {
		delete(out, id)
	} else {
		out[id] = true
	}
	return out
}

// SelectAllFiltered re-anchors selection to the current filter view: if
// the selection already equals the filtered id set the result is empty,
// otherwise it is exactly the filtered id set. Prior out-of-view
// selections are discarded either way.
func SelectAllFiltered(selected map[string]bool, filtered []domain.Zone) map[string]bool {
	if selectionEquals(selected, filtered) {
		return map[string]bool{}
	}
	out := make(map[string]bool, len(filtered))
	for _, z := range filtered {
		out[z.ID] = true
	}
	return out
}

// SelectionInOrder lists the selected ids in the zone list's order, which
// fixes the target order of a bulk run.
func SelectionInOrder(selected map[string]bool, zones []domain.Zone) []string {
	out := make([]string, 0, len(selected))
	for _, z := range zones {
		if selected[z.ID] {
			out = append(out, z.ID)
		}
	}
	return out
}

func selectionEquals(selected map[string]bool, filtered []domain.Zone) bool {
	n := 0
	for _, v := range selected {
		if v {
			n++
		}
	}
	if n != len(filtered) {
		return false
	}
	for _, z := range filtered {
		if !selected[z.ID] {
			return false
		}
	}
	return true
}
