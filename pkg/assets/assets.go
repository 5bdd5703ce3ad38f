package assets

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Champion is the static shop data for a champion
type Champion struct {
	Gold      int `json:"gold"`
	BoardSize int `json:"board_size"`
}

// Assets is the static game data: champion costs and sizes, item recipes.
type Assets struct {
	Champions  map[string]Champion `json:"champions"`
	Components []string            `json:"components"`
	// FullItems maps a completed item to its two components. Items that cannot be
	// crafted (e.g. radiant or ornn items) map to an empty list.
	FullItems map[string][]string `json:"full_items"`

	itemNames []string
}

// Load reads static game data from a JSON file
func Load(path string) (*Assets, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read assets file: %w", err)
	}
	return Parse(data)
}

// Parse decodes static game data and prepares the item name index
func Parse(data []byte) (*Assets, error) {
	var a Assets
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to unmarshal assets: %w", err)
	}
	if len(a.Champions) == 0 {
		return nil, fmt.Errorf("assets contain no champions")
	}
	a.index()
	return &a, nil
}

func (a *Assets) index() {
	a.itemNames = a.itemNames[:0]
	a.itemNames = append(a.itemNames, a.Components...)
	for name := range a.FullItems {
		a.itemNames = append(a.itemNames, name)
	}
	// Longest first so "TacticiansCrown" wins over any shorter name it contains.
	sort.Slice(a.itemNames, func(i, j int) bool {
		if len(a.itemNames[i]) != len(a.itemNames[j]) {
			return len(a.itemNames[i]) > len(a.itemNames[j])
		}
		return a.itemNames[i] < a.itemNames[j]
	})
}

// Cost returns the shop price of a champion
func (a *Assets) Cost(name string) (int, bool) {
	c, ok := a.Champions[name]
	if !ok {
		return 0, false
	}
	return c.Gold, true
}

// BoardSize returns how many board slots a champion occupies. Unknown champions count as 1.
func (a *Assets) BoardSize(name string) int {
	c, ok := a.Champions[name]
	if !ok || c.BoardSize <= 0 {
		return 1
	}
	return c.BoardSize
}

// IsFullItem reports whether item is a completed item
func (a *Assets) IsFullItem(item string) bool {
	_, ok := a.FullItems[item]
	return ok
}

// Recipe returns the two components of a craftable full item
func (a *Assets) Recipe(item string) ([2]string, bool) {
	parts, ok := a.FullItems[item]
	if !ok || len(parts) != 2 {
		return [2]string{}, false
	}
	return [2]string{parts[0], parts[1]}, true
}

// ParseItem matches recognized text against the known item names.
// The text usually carries noise around the name, so any contained name matches.
func (a *Assets) ParseItem(text string) (string, bool) {
	if a.itemNames == nil {
		a.index()
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}
	for _, name := range a.itemNames {
		if strings.Contains(text, name) {
			return name, true
		}
	}
	return "", false
}
