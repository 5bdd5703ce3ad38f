package arena

import (
	"maps"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixBenchState_MatchesOccupancy(t *testing.T) {
	c := newFakeClient(t)
	a := newTestArena(t, c)

	// Client has Ahri and an unwanted Poppy; the model has a stale unknown and a stale unit.
	c.bench[0] = "Ahri"
	c.bench[4] = "Poppy"
	a.session.Bench[1] = unknownSlot("?")
	stale, err := a.unitFor("Annie", 2)
	require.NoError(t, err)
	a.session.Bench[2] = knownSlot(stale)

	a.FixBenchState()

	occupied, ok := c.BenchOccupancy()
	require.True(t, ok)
	for i, slot := range a.session.Bench {
		assert.Equal(t, !occupied[i], slot.IsEmpty(), "slot %d", i)
	}

	u, ok := a.session.Bench[0].Known()
	require.True(t, ok)
	assert.Equal(t, "Ahri", u.Name)
	assert.Equal(t, []string{"Deathblade", "GuardianAngel"}, u.Build)
	assert.Equal(t, 2, a.session.Targets["Ahri"], "identifying a target consumes one copy")

	assert.True(t, a.session.Bench[4].IsUnknown())
	assert.Equal(t, "Poppy", a.session.Bench[4].Hint)
	assert.Len(t, c.rightClicks, 2)

	// Nothing changed, nothing to do.
	a.FixBenchState()
	assert.Len(t, c.rightClicks, 2)
}

func TestFixBenchState_LowercaseRead(t *testing.T) {
	c := newFakeClient(t)
	a := newTestArena(t, c)
	c.bench[3] = "ahri"

	a.FixBenchState()

	u, ok := a.session.Bench[3].Known()
	require.True(t, ok)
	assert.Equal(t, "Ahri", u.Name)
}

func TestFixBenchState_LowercaseTwoWordRead(t *testing.T) {
	c := newFakeClient(t)
	a := newTestArena(t, c)
	a.session.Targets["MissFortune"] = 1
	c.bench[2] = "missfortune"

	a.FixBenchState()

	assert.True(t, a.session.Bench[2].IsUnknown(), "not in the composition")
	assert.Equal(t, "MissFortune", a.session.Bench[2].Hint)
}

func TestFixBenchState_FailedReadKeepsBench(t *testing.T) {
	c := newFakeClient(t)
	a := newTestArena(t, c)
	knownUnit(t, a, c, "Ahri", 0)
	a.session.Bench[4] = unknownSlot("Poppy")
	c.bench[4] = "Poppy"
	targets := maps.Clone(a.session.Targets)
	c.benchBlind = true

	a.FixBenchState()

	u, ok := a.session.Bench[0].Known()
	require.True(t, ok)
	assert.Equal(t, "Ahri", u.Name)
	assert.True(t, a.session.Bench[4].IsUnknown())
	assert.Equal(t, targets, a.session.Targets)
	assert.Empty(t, c.rightClicks)
}

func TestBuyChampion_UnreadableBenchNotCredited(t *testing.T) {
	c := newFakeClient(t)
	a := newTestArena(t, c)
	c.gold = 10
	c.shop = []ShopOffer{{Slot: 0, Name: "Zed"}}
	c.benchBlind = true

	a.BuyChampion(ShopOffer{Slot: 0, Name: "Zed"}, 1)

	assert.Equal(t, 1, a.session.Targets["Zed"])
	for i, slot := range a.session.Bench {
		assert.True(t, slot.IsEmpty(), "slot %d", i)
	}
}

func TestFixBenchState_ExhaustedTargetIsUnknown(t *testing.T) {
	c := newFakeClient(t)
	a := newTestArena(t, c)
	a.session.Targets["Zed"] = 0
	c.bench[0] = "Zed"

	a.FixBenchState()

	assert.True(t, a.session.Bench[0].IsUnknown())
	assert.Equal(t, 0, a.session.Targets["Zed"])
}

func TestBoughtChampion(t *testing.T) {
	c := newFakeClient(t)
	a := newTestArena(t, c)
	c.bench[5] = "Annie"

	a.BoughtChampion("Annie", 5)

	u, ok := a.session.Bench[5].Known()
	require.True(t, ok)
	assert.Equal(t, c.layout.Bench[5], u.Location)
	assert.Equal(t, 5, u.Slot)
	assert.Equal(t, []string{"Morellonomicon"}, u.Build)
	assert.Contains(t, c.moves, c.layout.Default)
	assert.Empty(t, c.rightClicks, "bench already agrees with the client")
	assert.Equal(t, 9, a.session.Targets["Annie"], "the caller credits the purchase")
}

func TestBoughtChampion_NotRegistered(t *testing.T) {
	c := newFakeClient(t)
	a := newTestArena(t, c)

	// The client never received the unit.
	a.BoughtChampion("Annie", 1)

	assert.True(t, a.session.Bench[1].IsEmpty())
}

func TestSellBench(t *testing.T) {
	c := newFakeClient(t)
	a := newTestArena(t, c)
	knownUnit(t, a, c, "Ahri", 0)
	a.session.Bench[4] = unknownSlot("Poppy")
	c.bench[4] = "Poppy"

	a.SellBench()

	assert.Len(t, c.presses, 9)
	for i, slot := range a.session.Bench {
		assert.True(t, slot.IsEmpty(), "slot %d", i)
	}
	assert.Equal(t, 0, c.FirstEmptyBenchSlot())
}

func TestBenchCleanup(t *testing.T) {
	c := newFakeClient(t)
	a := newTestArena(t, c)

	a.session.Bench[0] = unknownSlot("Poppy")
	c.bench[0] = "Poppy"
	boardUnit(t, a, "Zed")
	delete(a.session.Targets, "Zed")
	knownUnit(t, a, c, "Zed", 1)
	knownUnit(t, a, c, "Ahri", 2)
	boardUnit(t, a, "Galio")
	knownUnit(t, a, c, "Galio", 3)

	a.BenchCleanup()

	assert.True(t, a.session.Bench[0].IsEmpty())
	assert.True(t, a.session.Bench[1].IsEmpty())
	assert.False(t, a.session.Bench[2].IsEmpty(), "wanted units stay")
	assert.False(t, a.session.Bench[3].IsEmpty(), "still a purchase target")
	assert.Equal(t, [9]bool{true, true}, a.session.AnvilFree)
	assert.Equal(t, []string{"", "", "Ahri", "Galio", "", "", "", "", ""}, c.bench[:])
}
