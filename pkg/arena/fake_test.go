package arena

import (
	"io"
	"log/slog"
	"slices"
	"testing"
	"time"

	"github.com/jwebster45206/arena-engine/pkg/assets"
	"github.com/jwebster45206/arena-engine/pkg/comp"
	"github.com/jwebster45206/arena-engine/pkg/screen"
	"github.com/stretchr/testify/require"
)

const testComp = `{
	"name": "Test Comp",
	"champions": {
		"Ahri":  {"board_position": 3, "items": ["Deathblade", "GuardianAngel"], "level": 2, "final_comp": true, "headliner": [true, false]},
		"Annie": {"board_position": 0, "items": ["Morellonomicon"], "level": 3, "final_comp": true, "headliner": [false, true]},
		"Galio": {"board_position": 10, "items": [], "level": 2, "final_comp": false},
		"Zed":   {"board_position": 12, "items": [], "level": 1, "final_comp": false}
	},
	"augments": ["Tactician's Crown", "Built Different"],
	"avoid_augments": ["Rolling", "Trash"]
}`

const testAssets = `{
	"champions": {
		"Ahri":  {"gold": 4, "board_size": 1},
		"Annie": {"gold": 2, "board_size": 1},
		"Galio": {"gold": 5, "board_size": 2},
		"Zed":   {"gold": 3, "board_size": 1},
		"Poppy": {"gold": 1, "board_size": 1},
		"Kobuko": {"gold": 1, "board_size": 2}
	},
	"components": ["BFSword", "ChainVest", "NeedlesslyLargeRod", "GiantsBelt", "Spatula"],
	"full_items": {
		"Deathblade": ["BFSword", "BFSword"],
		"GuardianAngel": ["BFSword", "ChainVest"],
		"Morellonomicon": ["NeedlesslyLargeRod", "GiantsBelt"],
		"TacticiansCrown": ["Spatula", "Spatula"]
	}
}`

// fakeClient is a small game client: purchases land on the bench, bench units
// can be picked up and dropped on the board, and the sell key empties a bench slot.
type fakeClient struct {
	t      *testing.T
	layout screen.Layout
	data   *assets.Assets

	gold      int
	level     int
	health    []int
	headliner int
	items     []string
	shop      []ShopOffer
	shops     [][]ShopOffer
	bench     [screen.BenchSlots]string
	texts     map[screen.Region][]string

	// benchBlind makes every bench read fail.
	benchBlind bool

	selected int
	held     int

	clicks      []screen.Vec2
	rightClicks []screen.Vec2
	presses     []screen.Vec2
	moves       []screen.Vec2
	rerolls     int
	xp          int
}

func newFakeClient(t *testing.T) *fakeClient {
	t.Helper()
	data, err := assets.Parse([]byte(testAssets))
	require.NoError(t, err)
	return &fakeClient{
		t:        t,
		layout:   screen.DefaultLayout(),
		data:     data,
		texts:    make(map[screen.Region][]string),
		selected: -1,
		held:     -1,
	}
}

func newTestArena(t *testing.T, client *fakeClient) *Arena {
	t.Helper()
	c, err := comp.Parse([]byte(testComp))
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(nil, client, client, c, client.data, logger).
		WithSleep(func(time.Duration) {}).
		WithLayout(client.layout)
}

// knownUnit puts a composition champion on the arena's bench and the client's bench.
func knownUnit(t *testing.T, a *Arena, c *fakeClient, name string, slot int) *Unit {
	t.Helper()
	u, err := a.unitFor(name, slot)
	require.NoError(t, err)
	a.session.Bench[slot] = knownSlot(u)
	c.bench[slot] = name
	return u
}

// boardUnit places a composition champion directly on the board.
func boardUnit(t *testing.T, a *Arena, name string) *Unit {
	t.Helper()
	u, err := a.unitFor(name, 0)
	require.NoError(t, err)
	ch, _ := a.policy.Champion(name)
	u.Slot = ch.BoardPosition
	u.Location = a.layout.Board[ch.BoardPosition]
	a.session.Board = append(a.session.Board, u)
	return u
}

func (c *fakeClient) benchIndex(pt screen.Vec2) int {
	return slices.Index(c.layout.Bench[:], pt)
}

func (c *fakeClient) ReadText(region screen.Region, _ int, _ string) string {
	if region == c.layout.PanelName && c.selected >= 0 {
		return c.bench[c.selected]
	}
	queue := c.texts[region]
	if len(queue) == 0 {
		return ""
	}
	text := queue[0]
	if len(queue) > 1 {
		c.texts[region] = queue[1:]
	}
	return text
}

func (c *fakeClient) Gold() int  { return c.gold }
func (c *fakeClient) Level() int { return c.level }

func (c *fakeClient) ShopOffers() []ShopOffer {
	offers := make([]ShopOffer, 0, len(c.shop))
	for _, o := range c.shop {
		if o.Name != "" {
			offers = append(offers, o)
		}
	}
	return offers
}

func (c *fakeClient) BenchOccupancy() ([screen.BenchSlots]bool, bool) {
	var occupied [screen.BenchSlots]bool
	if c.benchBlind {
		return occupied, false
	}
	for i, name := range c.bench {
		occupied[i] = name != ""
	}
	return occupied, true
}

func (c *fakeClient) FirstEmptyBenchSlot() int {
	if c.benchBlind {
		return -1
	}
	return slices.Index(c.bench[:], "")
}

func (c *fakeClient) Health() int {
	if len(c.health) == 0 {
		return 0
	}
	h := c.health[0]
	c.health = c.health[1:]
	return h
}

func (c *fakeClient) HeadlinerBitmask() int { return c.headliner }

func (c *fakeClient) ItemPool() []string { return slices.Clone(c.items) }

func (c *fakeClient) ValidateItemText(raw string) (string, bool) {
	return c.data.ParseItem(raw)
}

func (c *fakeClient) Click(pt screen.Vec2) {
	c.clicks = append(c.clicks, pt)
	if i := slices.Index(c.layout.Buy[:], pt); i >= 0 {
		c.buy(i)
		return
	}
	if i := c.benchIndex(pt); i >= 0 {
		c.held = i
		return
	}
	if slices.Contains(c.layout.Board[:], pt) && c.held >= 0 {
		c.bench[c.held] = ""
		c.held = -1
	}
}

func (c *fakeClient) buy(shopSlot int) {
	for i, o := range c.shop {
		if o.Slot != shopSlot || o.Name == "" {
			continue
		}
		cost, _ := c.data.Cost(o.Name)
		slot := c.FirstEmptyBenchSlot()
		if slot < 0 || c.gold < cost {
			return
		}
		c.gold -= cost
		c.bench[slot] = o.Name
		c.shop[i].Name = ""
		return
	}
}

func (c *fakeClient) RightClick(pt screen.Vec2) {
	c.rightClicks = append(c.rightClicks, pt)
	c.selected = c.benchIndex(pt)
}

func (c *fakeClient) MoveTo(pt screen.Vec2) { c.moves = append(c.moves, pt) }

func (c *fakeClient) PressAction(pt screen.Vec2) {
	c.presses = append(c.presses, pt)
	if i := c.benchIndex(pt); i >= 0 {
		c.bench[i] = ""
	}
}

func (c *fakeClient) Reroll() {
	c.rerolls++
	c.gold -= 2
	if len(c.shops) > 0 {
		c.shop = c.shops[0]
		c.shops = c.shops[1:]
	} else {
		c.shop = nil
	}
}

func (c *fakeClient) BuyXP() {
	c.xp++
	c.gold -= 4
}

type recordingSink struct {
	published [][]Label
}

func (r *recordingSink) PublishLabels(labels []Label) {
	r.published = append(r.published, labels)
}
