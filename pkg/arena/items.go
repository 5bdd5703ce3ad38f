package arena

import (
	"slices"
	"strings"

	"github.com/jwebster45206/arena-engine/pkg/textfilter"
)

// PlaceItems reads the item pool and hands each item to the first board unit
// that can use it: a completed item it still needs, a component of its next
// item, or the component that finishes its open pairing.
func (a *Arena) PlaceItems() {
	a.session.Items = slices.Clone(a.perception.ItemPool())
	a.logger.Info("Items", "pool", slices.DeleteFunc(slices.Clone(a.session.Items), func(s string) bool { return s == "" }))

	for i := range a.session.Items {
		if a.session.Items[i] == "" {
			continue
		}
		for _, u := range a.session.Board {
			if !u.NeedsItems() {
				continue
			}
			if a.offerItem(i, u) {
				break
			}
		}
	}
}

// offerItem places pool item i on u if u can use it and reports whether it did.
func (a *Arena) offerItem(i int, u *Unit) bool {
	item := a.session.Items[i]

	if a.data.IsFullItem(item) {
		if !u.Wants(item) {
			return false
		}
		a.placeOn(i, u)
		u.placeFull(item)
		a.logger.Info("Placed item", "item", item, "name", u.Name)
		return true
	}

	switch u.Assembly.State {
	case NeedsItem:
		for _, target := range u.Build {
			recipe, ok := a.data.Recipe(target)
			if !ok {
				continue
			}
			var missing string
			switch item {
			case recipe[0]:
				missing = recipe[1]
			case recipe[1]:
				missing = recipe[0]
			default:
				continue
			}
			a.placeOn(i, u)
			u.startAssembly(target, missing)
			a.logger.Info("Placed component", "item", item, "name", u.Name, "building", target)
			return true
		}
	case Assembling:
		if u.Assembly.Pairing == nil || item != u.Assembly.Pairing.Missing {
			return false
		}
		a.placeOn(i, u)
		done := u.finishAssembly()
		a.logger.Info("Completed item", "item", done, "name", u.Name)
		return true
	}
	return false
}

func (a *Arena) placeOn(i int, u *Unit) {
	if i < len(a.layout.Items) {
		a.actuator.Click(a.layout.Items[i].Slot)
	}
	a.actuator.Click(u.Location)
	a.session.Items[i] = ""
}

// TacticiansCrownCheck reads the first item slot and grants an extra board
// slot when it holds a Tactician's Crown.
func (a *Arena) TacticiansCrownCheck() {
	first := a.layout.Items[0]
	a.actuator.MoveTo(first.Slot)
	a.sleep(settleBench)
	raw := a.perception.ReadText(first.Label, textScale, textfilter.AlphabetWhitelist)

	item, ok := a.perception.ValidateItemText(raw)
	if !ok {
		a.logger.Warn("Item could not be read for crown check", "read", raw)
		return
	}
	if !strings.Contains(item, tacticiansCrown) {
		a.logger.Debug("Item is not a crown", "item", item)
		return
	}
	a.logger.Info("Crown on bench, adding extra board slot")
	a.session.CrownSlots++
}
