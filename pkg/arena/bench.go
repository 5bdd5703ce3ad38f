package arena

import (
	"maps"
	"slices"

	"github.com/jwebster45206/arena-engine/pkg/screen"
	"github.com/jwebster45206/arena-engine/pkg/textfilter"
)

// FixBenchState brings every bench slot in line with the observed occupancy.
// Newly occupied slots are identified through the name panel; a name still
// wanted by the composition becomes a known unit, anything else an unknown marker.
// Slots modeled as filled but observed empty are cleared. A failed read leaves
// the bench model untouched.
func (a *Arena) FixBenchState() {
	occupied, ok := a.perception.BenchOccupancy()
	if !ok {
		a.logger.Warn("Bench read failed, keeping bench state")
		return
	}
	for i, slot := range a.session.Bench {
		switch {
		case slot.IsEmpty() && occupied[i]:
			a.identify(i)
		case !slot.IsEmpty() && !occupied[i]:
			a.session.Bench[i] = emptySlot()
		}
	}
}

func (a *Arena) identify(slot int) {
	a.actuator.RightClick(a.benchLoc(slot))
	raw := a.perception.ReadText(a.layout.PanelName, textScale, textfilter.AlphabetWhitelist)
	name := textfilter.ChampionName(raw, slices.Collect(maps.Keys(a.session.Targets)))

	if a.session.Targets[name] > 0 {
		u, err := a.unitFor(name, slot)
		if err != nil {
			a.logger.Warn("Target champion missing from composition", "name", name, "error", err)
			a.session.Bench[slot] = unknownSlot(name)
			return
		}
		a.logger.Info("Identified bench champion", "name", name, "slot", slot)
		a.session.Bench[slot] = knownSlot(u)
		a.session.decrementTarget(name, 1)
		return
	}
	a.logger.Debug("Unwanted or unreadable bench champion", "read", name, "slot", slot)
	a.session.Bench[slot] = unknownSlot(name)
}

// BoughtChampion records a purchase into slot and re-checks the bench.
func (a *Arena) BoughtChampion(name string, slot int) {
	if slot < 0 || slot >= len(a.session.Bench) {
		a.logger.Warn("Purchase into invalid bench slot", "name", name, "slot", slot)
		return
	}
	u, err := a.unitFor(name, slot)
	if err != nil {
		a.logger.Warn("Bought champion outside composition", "name", name, "error", err)
		a.session.Bench[slot] = unknownSlot(name)
	} else {
		a.session.Bench[slot] = knownSlot(u)
	}
	a.actuator.MoveTo(a.layout.Default)
	a.sleep(settleBench)
	a.FixBenchState()
}

// SellBench sells everything on the bench.
func (a *Arena) SellBench() {
	for i := range a.session.Bench {
		a.actuator.PressAction(a.benchLoc(i))
		a.session.Bench[i] = emptySlot()
	}
}

// BenchCleanup sells unknown occupants and known units that are no longer
// wanted and already have a copy on the board. Sold slots are remembered so
// ClearAnvil leaves them alone.
func (a *Arena) BenchCleanup() {
	a.session.AnvilFree = [screen.BenchSlots]bool{}
	for i, slot := range a.session.Bench {
		sell := slot.IsUnknown()
		if u, ok := slot.Known(); ok {
			sell = !a.isTarget(u.Name) && a.session.OnBoard(u.Name)
		}
		if !sell {
			continue
		}
		a.logger.Info("Selling bench champion", "slot", slot.label(), "index", i)
		a.actuator.PressAction(a.benchLoc(i))
		a.session.Bench[i] = emptySlot()
		a.session.AnvilFree[i] = true
	}
}

// offBoardUnit returns the first known bench unit whose name is not yet on the board.
func (a *Arena) offBoardUnit() (*Unit, int) {
	for i, slot := range a.session.Bench {
		if u, ok := slot.Known(); ok && !a.session.OnBoard(u.Name) {
			return u, i
		}
	}
	return nil, -1
}

func (a *Arena) unknownInBench() bool {
	for _, slot := range a.session.Bench {
		if slot.IsUnknown() {
			return true
		}
	}
	return false
}
