package arena

// SpendGold buys wanted champions until gold drops below the floor for the
// current mode, rerolling (and buying experience below max level) between shops.
// The first shop is inspected as presented.
func (a *Arena) SpendGold(speedy bool) {
	minGold := a.minGold(speedy)
	for refresh := 0; refresh < a.maxShopRefreshes; refresh++ {
		if refresh > 0 {
			if a.perception.Gold() < minGold {
				return
			}
			if a.perception.Level() != MaxLevel {
				a.logger.Debug("Purchasing XP")
				a.actuator.BuyXP()
			}
			a.logger.Debug("Rerolling shop")
			a.actuator.Reroll()
			a.sleep(settleBuy)
		}

		offers := a.perception.ShopOffers()
		a.logger.Debug("Shop", "offers", offers)
		for _, offer := range offers {
			a.considerOffer(offer)
		}
	}
	a.logger.Warn("Stopped spending after shop refresh limit", "limit", a.maxShopRefreshes)
}

func (a *Arena) minGold(speedy bool) int {
	switch {
	case speedy:
		return speedyMinGold
	case a.session.Flags.AggressiveRoll:
		return aggressiveMinGold
	default:
		return standardMinGold
	}
}

func (a *Arena) considerOffer(offer ShopOffer) {
	remaining, ok := a.session.Targets[offer.Name]
	if !ok {
		return
	}
	cost, ok := a.data.Cost(offer.Name)
	if !ok || a.perception.Gold() < cost {
		return
	}

	mask := 0
	if offer.Slot == headlinerSlot {
		mask = a.perception.HeadlinerBitmask()
	}
	if mask == 0 {
		if remaining > 0 {
			a.BuyChampion(offer, 1)
		}
		return
	}

	if mask&a.policy.HeadlinerTag(offer.Name) == 0 || a.session.Flags.HeadlinerAcquired {
		return
	}
	ch, ok := a.policy.Champion(offer.Name)
	if !ok || !ch.FinalComp {
		return
	}
	if a.perception.Gold() < cost*headlinerMultiple {
		return
	}
	a.BuyHeadliner(offer.Name)
}

// BuyChampion buys offer and lowers its remaining demand by quantity. With a
// full bench the click is still sent; demand is only lowered when a slot turns
// out to be free afterwards.
func (a *Arena) BuyChampion(offer ShopOffer, quantity int) {
	if offer.Slot < 0 || offer.Slot >= len(a.layout.Buy) {
		a.logger.Warn("Invalid shop slot", "slot", offer.Slot, "name", offer.Name)
		return
	}

	slot := a.perception.FirstEmptyBenchSlot()
	if slot != -1 {
		a.actuator.Click(a.layout.Buy[offer.Slot])
		a.logger.Info("Purchased champion", "name", offer.Name, "bench_slot", slot)
		a.BoughtChampion(offer.Name, slot)
		a.session.decrementTarget(offer.Name, quantity)
		return
	}

	a.logger.Info("Bench is full, buying anyway", "name", offer.Name)
	a.actuator.Click(a.layout.Buy[offer.Slot])
	a.actuator.MoveTo(a.layout.Default)
	a.sleep(settleBench)
	a.FixBenchState()
	slot = a.perception.FirstEmptyBenchSlot()
	a.sleep(settleBench)
	if slot == -1 {
		a.logger.Warn("Purchase not credited, bench still full", "name", offer.Name)
		return
	}
	a.logger.Info("Purchased champion", "name", offer.Name)
	a.session.decrementTarget(offer.Name, quantity)
}

// BuyHeadliner buys the headliner variant of name from the headliner shop slot.
// Below three stars an existing copy is cleared first: a board copy is removed
// and the new unit takes its hex, bench copies are sold.
func (a *Arena) BuyHeadliner(name string) {
	ch, ok := a.policy.Champion(name)
	if !ok {
		a.logger.Warn("Headliner not in composition", "name", name)
		return
	}
	offer := ShopOffer{Slot: headlinerSlot, Name: name}
	a.logger.Info("Buying headliner", "name", name, "level", ch.Level)

	switch {
	case ch.Level >= 3:
		a.BuyChampion(offer, headlinerMultiple)
	case a.session.OnBoard(name):
		a.RemoveChampion(a.session.boardUnit(name))
		a.BuyChampion(offer, 0)
		for i, slot := range a.session.Bench {
			if u, ok := slot.Known(); ok && u.Name == name {
				a.moveKnown(u, i)
				break
			}
		}
	default:
		for i, slot := range a.session.Bench {
			if u, ok := slot.Known(); ok && u.Name == name {
				a.actuator.PressAction(u.Location)
				a.session.Bench[i] = emptySlot()
			}
		}
		a.BuyChampion(offer, headlinerMultiple)
	}
	a.session.Flags.HeadlinerAcquired = true
}

// BuyXPRound buys experience once when there is gold for it.
func (a *Arena) BuyXPRound() {
	if a.perception.Gold() >= xpCost {
		a.actuator.BuyXP()
	}
}
