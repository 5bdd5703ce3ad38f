package arena

import (
	"strings"

	"github.com/jwebster45206/arena-engine/pkg/textfilter"
)

// AugmentState is a step of augment selection.
type AugmentState int

const (
	AwaitingOptions AugmentState = iota
	Matched
	RollOnce
	AvoidScan
	Fallback
)

func (s AugmentState) String() string {
	switch s {
	case AwaitingOptions:
		return "awaiting_options"
	case Matched:
		return "matched"
	case RollOnce:
		return "roll_once"
	case AvoidScan:
		return "avoid_scan"
	case Fallback:
		return "fallback"
	}
	return "unknown"
}

// PickAugment chooses one of the three offered augments and returns its index.
// A priority match wins; otherwise the one-time reroll is spent; after that the
// first option not on the avoid list is taken, and failing that the first option.
func (a *Arena) PickAugment() int {
	var options []string
	choice := 0
	state := AwaitingOptions

	for {
		a.logger.Debug("Augment selection", "state", state.String())
		switch state {
		case AwaitingOptions:
			read, ok := a.readAugments()
			if !ok {
				a.logger.Warn("Augment options could not be read", "polls", a.maxAugmentPolls)
				state = Fallback
				continue
			}
			options = read
			if i := matchPriority(options, a.policy.AugmentPriority()); i >= 0 {
				choice = i
				state = Matched
			} else if !a.session.Flags.AugmentRerollUsed {
				state = RollOnce
			} else {
				state = AvoidScan
			}

		case RollOnce:
			a.logger.Info("Rolling for augment")
			for _, pt := range a.layout.AugmentRoll {
				a.actuator.Click(pt)
			}
			a.session.Flags.AugmentRerollUsed = true
			state = AwaitingOptions

		case AvoidScan:
			a.logger.Warn("No priority augment found")
			if i := firstAllowed(options, a.policy.AugmentAvoid()); i >= 0 {
				choice = i
				state = Matched
			} else {
				state = Fallback
			}

		case Matched:
			a.logger.Info("Choosing augment", "augment", options[choice], "index", choice)
			a.actuator.Click(a.layout.AugmentPick[choice])
			return choice

		case Fallback:
			a.actuator.Click(a.layout.AugmentPick[0])
			return 0
		}
	}
}

// readAugments polls until all three option texts are readable.
func (a *Arena) readAugments() ([]string, bool) {
	for range a.maxAugmentPolls {
		a.sleep(settleAugment)
		options := make([]string, 0, len(a.layout.AugmentText))
		for _, region := range a.layout.AugmentText {
			options = append(options, strings.TrimSpace(a.perception.ReadText(region, textScale, "")))
		}
		if len(options) == 3 && textfilter.NonEmpty(options) {
			return options, true
		}
	}
	return nil, false
}

// matchPriority returns the option containing the earliest priority entry.
func matchPriority(options, priority []string) int {
	for _, want := range priority {
		for i, option := range options {
			if strings.Contains(option, want) {
				return i
			}
		}
	}
	return -1
}

// firstAllowed returns the first option containing no avoid entry.
func firstAllowed(options, avoid []string) int {
	for i, option := range options {
		avoided := false
		for _, bad := range avoid {
			if strings.Contains(option, bad) {
				avoided = true
				break
			}
		}
		if !avoided {
			return i
		}
	}
	return -1
}
