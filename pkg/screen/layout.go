package screen

// Vec2 is a pixel position on the game client.
type Vec2 struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Region is a rectangular area of the client read by text recognition.
type Region struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Center returns the middle of the region.
func (r Region) Center() Vec2 {
	return Vec2{X: (r.X1 + r.X2) / 2, Y: (r.Y1 + r.Y2) / 2}
}

// ItemSlot is one entry of the loose item pool: where to click it and where its tooltip name is drawn.
type ItemSlot struct {
	Slot  Vec2   `json:"slot"`
	Label Region `json:"label"`
}

const (
	BenchSlots = 9
	BoardHexes = 28
	ShopSlots  = 5
	ItemSlots  = 10
)

// Layout holds every coordinate the arena clicks or reads.
type Layout struct {
	Bench       [BenchSlots]Vec2    `json:"bench"`
	Board       [BoardHexes]Vec2    `json:"board"`
	Buy         [ShopSlots]Vec2     `json:"buy"`
	Items       [ItemSlots]ItemSlot `json:"items"`
	AugmentText [3]Region           `json:"augment_text"`
	AugmentPick [3]Vec2             `json:"augment_pick"`
	AugmentRoll [3]Vec2             `json:"augment_roll"`
	PanelName   Region              `json:"panel_name"`
	AnvilMsg    Region              `json:"anvil_msg"`
	Default     Vec2                `json:"default"`
}

// DefaultLayout returns coordinates for a 1920x1080 client.
func DefaultLayout() Layout {
	l := Layout{
		Buy: [ShopSlots]Vec2{
			{X: 575, Y: 992}, {X: 775, Y: 992}, {X: 975, Y: 992}, {X: 1175, Y: 992}, {X: 1375, Y: 992},
		},
		AugmentText: [3]Region{
			{X1: 424, Y1: 527, X2: 687, Y2: 555},
			{X1: 833, Y1: 527, X2: 1086, Y2: 555},
			{X1: 1231, Y1: 527, X2: 1493, Y2: 555},
		},
		AugmentPick: [3]Vec2{{X: 557, Y: 533}, {X: 959, Y: 533}, {X: 1361, Y: 533}},
		AugmentRoll: [3]Vec2{{X: 557, Y: 807}, {X: 959, Y: 807}, {X: 1361, Y: 807}},
		PanelName:   Region{X1: 1575, Y1: 250, X2: 1725, Y2: 270},
		AnvilMsg:    Region{X1: 840, Y1: 30, X2: 1080, Y2: 55},
		Default:     Vec2{X: 555, Y: 845},
	}

	for i := range l.Bench {
		l.Bench[i] = Vec2{X: 425 + i*117, Y: 777}
	}

	// Four rows of seven hexes, odd rows shifted right by half a hex.
	for row := 0; row < 4; row++ {
		for col := 0; col < 7; col++ {
			x := 581 + col*128
			if row%2 == 1 {
				x += 64
			}
			l.Board[row*7+col] = Vec2{X: x, Y: 651 - row*75}
		}
	}

	for i := range l.Items {
		y := 745 - i*28
		if i >= 5 {
			y -= 10
		}
		l.Items[i] = ItemSlot{
			Slot:  Vec2{X: 289 + (i%2)*14, Y: y},
			Label: Region{X1: 374, Y1: y - 10, X2: 600, Y2: y + 10},
		}
	}

	return l
}
