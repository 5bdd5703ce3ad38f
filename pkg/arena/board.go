package arena

// MoveChampions fills the board up to the current level. Known bench units go
// first, then unknown occupants, then a cheap filler bought from the shop. When
// none of those is possible the bench is sold so the model starts clean.
func (a *Arena) MoveChampions() {
	level := a.perception.Level()
	a.session.Level = level

	for a.session.BoardSize() < level {
		if u, slot := a.offBoardUnit(); u != nil {
			if a.moveKnown(u, slot) {
				continue
			}
			a.SellBench()
			return
		}
		if a.unknownInBench() {
			if a.moveUnknown() {
				continue
			}
			a.logger.Warn("No free hex for unknown champion, selling bench")
			a.SellBench()
			return
		}
		if !a.buyFiller() {
			a.logger.Info("Nothing to place, selling bench to keep track of board",
				"board_size", a.session.BoardSize(),
				"level", level)
			a.SellBench()
			return
		}
	}
}

// moveKnown moves a bench unit to its composition hex.
func (a *Arena) moveKnown(u *Unit, slot int) bool {
	ch, ok := a.policy.Champion(u.Name)
	if !ok {
		a.logger.Warn("Unit has no board position", "name", u.Name)
		return false
	}
	dest := a.boardLoc(ch.BoardPosition)
	a.logger.Info("Moving champion to board", "name", u.Name, "hex", ch.BoardPosition)

	a.actuator.Click(u.Location)
	a.sleep(settleClick)
	a.actuator.Click(dest)

	u.Location = dest
	u.Slot = ch.BoardPosition
	a.session.Board = append(a.session.Board, u)
	if slot >= 0 && slot < len(a.session.Bench) {
		a.session.Bench[slot] = emptySlot()
	}
	return true
}

// moveUnknown moves the first unknown bench occupant to the next free unknown hex.
// It reports false when there is no unknown occupant or no free hex.
func (a *Arena) moveUnknown() bool {
	for i, slot := range a.session.Bench {
		if !slot.IsUnknown() {
			continue
		}
		hex, ok := a.nextUnknownHex()
		if !ok {
			return false
		}
		a.logger.Info("Moving unknown champion to board", "read", slot.Hint, "hex", hex)

		a.actuator.Click(a.benchLoc(i))
		a.sleep(settleClick)
		a.actuator.Click(a.boardLoc(hex))

		a.session.Bench[i] = emptySlot()
		a.session.BoardUnknown = append(a.session.BoardUnknown, UnknownPlacement{Name: slot.Hint, Hex: hex})
		return true
	}
	return false
}

func (a *Arena) nextUnknownHex() (int, bool) {
	used := make(map[int]bool, len(a.session.BoardUnknown))
	for _, p := range a.session.BoardUnknown {
		used[p.Hex] = true
	}
	for _, hex := range a.policy.UnknownSlots() {
		if !used[hex] {
			return hex, true
		}
	}
	return 0, false
}

// buyFiller buys a one-cost, one-slot champion the composition does not want
// and parks it on the board as an unknown.
func (a *Arena) buyFiller() bool {
	for _, offer := range a.perception.ShopOffers() {
		cost, ok := a.data.Cost(offer.Name)
		if !ok || cost != 1 || cost > a.perception.Gold() {
			continue
		}
		if a.data.BoardSize(offer.Name) != 1 || a.isTarget(offer.Name) || a.session.unknownOnBoard(offer.Name) {
			continue
		}
		slot := a.perception.FirstEmptyBenchSlot()
		if slot < 0 {
			return false
		}
		a.logger.Info("Buying filler champion", "name", offer.Name, "shop_slot", offer.Slot)
		a.actuator.Click(a.layout.Buy[offer.Slot])
		a.sleep(settleBuy)
		a.session.Bench[slot] = unknownSlot(offer.Name)
		return a.moveUnknown()
	}
	return false
}

// ReplaceUnknown swaps the most recently placed unknown for a known bench unit.
func (a *Arena) ReplaceUnknown() {
	n := len(a.session.BoardUnknown)
	u, slot := a.offBoardUnit()
	if n == 0 || u == nil {
		return
	}
	last := a.session.BoardUnknown[n-1]
	a.logger.Info("Replacing unknown champion", "read", last.Name, "hex", last.Hex, "with", u.Name)
	a.actuator.PressAction(a.boardLoc(last.Hex))
	a.session.BoardUnknown = a.session.BoardUnknown[:n-1]
	a.moveKnown(u, slot)
}

// FixUnknown sells the oldest unknown on the board.
func (a *Arena) FixUnknown() {
	if len(a.session.BoardUnknown) == 0 {
		return
	}
	a.sleep(settleUnknown)
	first := a.session.BoardUnknown[0]
	a.actuator.PressAction(a.boardLoc(first.Hex))
	a.session.BoardUnknown = a.session.BoardUnknown[1:]
}

// FinalCompCheck swaps one board unit outside the final composition for a
// final-composition unit of the same size waiting on the bench.
func (a *Arena) FinalCompCheck() {
	for slot, bs := range a.session.Bench {
		u, ok := bs.Known()
		if !ok || !u.FinalComp || a.session.OnBoard(u.Name) {
			continue
		}
		for _, b := range a.session.Board {
			if b.FinalComp || b.Size != u.Size {
				continue
			}
			a.logger.Info("Replacing champion with final comp champion", "name", b.Name, "with", u.Name)
			a.RemoveChampion(b)
			a.moveKnown(u, slot)
			return
		}
	}
}

// RemoveChampion sells u and every bench copy of it, and drops it from the purchase targets.
func (a *Arena) RemoveChampion(u *Unit) {
	for i, slot := range a.session.Bench {
		if b, ok := slot.Known(); ok && b.Name == u.Name {
			a.actuator.PressAction(b.Location)
			a.session.Bench[i] = emptySlot()
		}
	}
	delete(a.session.Targets, u.Name)

	a.actuator.PressAction(u.Location)
	a.session.removeFromBoard(u)
}
