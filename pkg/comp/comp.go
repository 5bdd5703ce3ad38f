package comp

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
)

// BoardHexes is the number of hexes a player can place units on.
const BoardHexes = 28

var ErrUnknownChampion = errors.New("champion not in composition")

// Champion is one member of the target composition
type Champion struct {
	BoardPosition int      `json:"board_position"`      // hex index 0-27
	Items         []string `json:"items"`               // completed items to build, in priority order
	Level         int      `json:"level"`               // star level to reach: 1, 2 or 3
	FinalComp     bool     `json:"final_comp"`          // whether the champion belongs on the end-game board
	Headliner     []bool   `json:"headliner,omitempty"` // trait flags eligible for the headliner slot
}

// Comp is a user-authored composition: who to buy, where to put them, what to build, and augment preferences.
type Comp struct {
	Name          string              `json:"name"`
	FileName      string              `json:"file_name,omitempty"`
	Champions     map[string]Champion `json:"champions"`
	Augments      []string            `json:"augments"`       // priority order, matched as substrings
	AvoidAugments []string            `json:"avoid_augments"` // never picked unless nothing else is offered
}

// Load reads a composition from a JSON file. The filename becomes the FileName.
func Load(path string) (*Comp, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read comp file: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, err
	}
	c.FileName = filepath.Base(path)
	return c, nil
}

// Parse decodes and validates a composition
func Parse(data []byte) (*Comp, error) {
	var c Comp
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal comp: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate reports every structural problem in the composition
func (c *Comp) Validate() error {
	var problems []string
	if len(c.Champions) == 0 {
		problems = append(problems, "comp has no champions")
	}

	seen := make(map[int]string)
	for _, name := range c.names() {
		ch := c.Champions[name]
		if ch.BoardPosition < 0 || ch.BoardPosition >= BoardHexes {
			problems = append(problems, fmt.Sprintf("%s: board_position %d out of range 0-%d", name, ch.BoardPosition, BoardHexes-1))
		} else if other, dup := seen[ch.BoardPosition]; dup {
			problems = append(problems, fmt.Sprintf("%s: board_position %d already used by %s", name, ch.BoardPosition, other))
		} else {
			seen[ch.BoardPosition] = name
		}
		if _, err := TargetCount(ch.Level); err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", name, err))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid comp %q:\n%s", c.Name, strings.Join(problems, "\n"))
	}
	return nil
}

// TargetCount is how many copies reach the given star level
func TargetCount(level int) (int, error) {
	switch level {
	case 1:
		return 1, nil
	case 2:
		return 3, nil
	case 3:
		return 9, nil
	default:
		return 0, fmt.Errorf("level %d must be 1, 2 or 3", level)
	}
}

// Champion returns the composition entry for name
func (c *Comp) Champion(name string) (Champion, bool) {
	ch, ok := c.Champions[name]
	if !ok {
		return Champion{}, false
	}
	ch.Items = slices.Clone(ch.Items)
	return ch, true
}

// PurchaseTargets returns a fresh map of champion name to copies still wanted
func (c *Comp) PurchaseTargets() map[string]int {
	targets := make(map[string]int, len(c.Champions))
	for name, ch := range c.Champions {
		n, err := TargetCount(ch.Level)
		if err != nil {
			continue
		}
		targets[name] = n
	}
	return targets
}

func (c *Comp) AugmentPriority() []string { return slices.Clone(c.Augments) }

func (c *Comp) AugmentAvoid() []string { return slices.Clone(c.AvoidAugments) }

// UnknownSlots returns the hexes not claimed by any composition champion, in ascending order.
// Units whose identity could not be read are parked there.
func (c *Comp) UnknownSlots() []int {
	used := make(map[int]bool, len(c.Champions))
	for _, ch := range c.Champions {
		used[ch.BoardPosition] = true
	}
	slots := make([]int, 0, BoardHexes-len(used))
	for i := 0; i < BoardHexes; i++ {
		if !used[i] {
			slots = append(slots, i)
		}
	}
	return slots
}

// HeadlinerTag packs the champion's headliner trait flags into a bitmask, first flag most significant.
// It is compared against the mask read from the shop's headliner slot.
func (c *Comp) HeadlinerTag(name string) int {
	ch, ok := c.Champions[name]
	if !ok {
		return 0
	}
	tag := 0
	for _, flag := range ch.Headliner {
		tag <<= 1
		if flag {
			tag |= 1
		}
	}
	return tag
}

func (c *Comp) names() []string {
	names := make([]string, 0, len(c.Champions))
	for name := range c.Champions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
