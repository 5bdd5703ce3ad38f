package arena

import (
	"github.com/jwebster45206/arena-engine/pkg/assets"
	"github.com/jwebster45206/arena-engine/pkg/comp"
	"github.com/jwebster45206/arena-engine/pkg/screen"
)

// ShopOffer is a champion shown in a shop slot (0-4).
type ShopOffer struct {
	Slot int    `json:"slot"`
	Name string `json:"name"`
}

// Perception reads the game client. Reads do not return errors: an unreadable
// value comes back as its zero value ("" text, 0 gold). Bench reads report
// failure explicitly since an empty bench is a valid observation.
type Perception interface {
	ReadText(region screen.Region, scale int, whitelist string) string
	Gold() int
	Level() int
	ShopOffers() []ShopOffer
	// BenchOccupancy reports false when the bench could not be read.
	BenchOccupancy() ([screen.BenchSlots]bool, bool)
	// FirstEmptyBenchSlot returns -1 when the bench is full or unreadable.
	FirstEmptyBenchSlot() int
	Health() int
	HeadlinerBitmask() int
	// ItemPool returns the loose item slots, "" for an empty slot.
	ItemPool() []string
	ValidateItemText(raw string) (string, bool)
}

// Actuator drives mouse and keyboard input.
type Actuator interface {
	Click(pt screen.Vec2)
	RightClick(pt screen.Vec2)
	MoveTo(pt screen.Vec2)
	// PressAction presses the sell key with the pointer at pt.
	PressAction(pt screen.Vec2)
	Reroll()
	BuyXP()
}

// CompositionPolicy is the user-authored plan. *comp.Comp implements it.
type CompositionPolicy interface {
	Champion(name string) (comp.Champion, bool)
	PurchaseTargets() map[string]int
	AugmentPriority() []string
	AugmentAvoid() []string
	UnknownSlots() []int
	HeadlinerTag(name string) int
}

// GameData is the static champion and item data. *assets.Assets implements it.
type GameData interface {
	Cost(name string) (int, bool)
	BoardSize(name string) int
	Recipe(item string) ([2]string, bool)
	IsFullItem(item string) bool
}

// Label is a name drawn over a unit by a display layer.
type Label struct {
	Text  string      `json:"text"`
	Coord screen.Vec2 `json:"coord"`
}

// StatusSink receives display labels.
type StatusSink interface {
	PublishLabels(labels []Label)
}

var (
	_ CompositionPolicy = (*comp.Comp)(nil)
	_ GameData          = (*assets.Assets)(nil)
)
