package arena

import (
	"github.com/jwebster45206/arena-engine/pkg/textfilter"
)

// ClearAnvil presses every empty bench slot not freed by BenchCleanup to open
// an anvil prompt, then takes the middle choice if one appeared.
func (a *Arena) ClearAnvil() {
	for i, slot := range a.session.Bench {
		if slot.IsEmpty() && !a.session.AnvilFree[i] {
			a.actuator.PressAction(a.benchLoc(i))
		}
	}
	a.sleep(settleBench)

	msg := a.perception.ReadText(a.layout.AnvilMsg, textScale, textfilter.AlphabetWhitelist)
	if msg != anvilPrompt {
		a.logger.Debug("No anvil prompt", "read", msg)
		return
	}
	a.logger.Info("Clearing anvil")
	a.actuator.Click(a.layout.Buy[anvilChoice])
	a.sleep(settleAnvilPick)
}

// CheckHealth applies the observed health to the tactician and latches
// aggressive rolling the first time its HP drops below AggressiveHealth.
// A zero read is a failed read.
func (a *Arena) CheckHealth() {
	health := a.perception.Health()
	if health <= 0 {
		a.logger.Warn("Health check failed")
		return
	}
	if a.tactician == nil {
		a.logger.Warn("No tactician to track health", "health", health)
		return
	}

	t := a.tactician
	switch change := health - t.HP(); {
	case change < 0:
		t.SubHP(-change)
		t.IncrementAttribute(attrDamageTaken, -change)
		a.logger.Info("Tactician took damage", "damage", -change, "health", t.HP())
	case change > 0:
		t.AddHP(change)
		a.logger.Info("Tactician healed", "amount", change, "health", t.HP())
	}
	a.session.Health = t.HP()
	a.session.DamageTaken, _ = t.Attribute(attrDamageTaken)

	if !a.session.Flags.AggressiveRoll && t.HP() < AggressiveHealth {
		a.logger.Info("Health under threshold, aggressive rolling enabled", "health", t.HP())
		a.session.Flags.AggressiveRoll = true
	}
}

// Labels returns the names to draw over bench units, board units and unknown placements.
func (a *Arena) Labels() []Label {
	labels := make([]Label, 0, len(a.session.Bench)+len(a.session.Board)+len(a.session.BoardUnknown))
	for _, slot := range a.session.Bench {
		if u, ok := slot.Known(); ok {
			labels = append(labels, Label{Text: textfilter.DisplayName(u.Name), Coord: u.Location})
		}
	}
	for _, u := range a.session.Board {
		labels = append(labels, Label{Text: textfilter.DisplayName(u.Name), Coord: u.Location})
	}
	for _, p := range a.session.BoardUnknown {
		labels = append(labels, Label{Text: textfilter.DisplayName(p.Name), Coord: a.boardLoc(p.Hex)})
	}
	return labels
}

// PublishLabels sends the current labels to the status sink, if any.
func (a *Arena) PublishLabels() {
	if a.sink == nil {
		return
	}
	a.sink.PublishLabels(a.Labels())
}
