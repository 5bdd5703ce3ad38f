package arena

import (
	"testing"
	"time"

	"github.com/jwebster45206/arena-engine/pkg/screen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckHealth_LatchesAggressiveRoll(t *testing.T) {
	c := newFakeClient(t)
	a := newTestArena(t, c)
	c.health = []int{45, 38, 29, 31}

	var latched []bool
	for range 4 {
		a.CheckHealth()
		latched = append(latched, a.session.Flags.AggressiveRoll)
	}

	assert.Equal(t, []bool{false, false, true, true}, latched)
	assert.Equal(t, 31, a.session.Health)
	assert.Equal(t, 71, a.session.DamageTaken, "healing does not undo damage taken")
	require.NotNil(t, a.Tactician())
	assert.Equal(t, 31, a.Health())
	assert.Equal(t, MaxHealth, a.Tactician().MaxHP())
}

func TestCheckHealth_ResumesFromSession(t *testing.T) {
	c := newFakeClient(t)
	a := newTestArena(t, c)
	a.session.Health = 35
	a.session.DamageTaken = 65

	resumed := New(a.session, c, c, a.policy, a.data, nil).WithSleep(func(time.Duration) {})
	require.Equal(t, 35, resumed.Health())

	c.health = []int{28}
	resumed.CheckHealth()

	assert.Equal(t, 28, resumed.Health())
	assert.Equal(t, 72, a.session.DamageTaken)
	assert.True(t, a.session.Flags.AggressiveRoll)
}

func TestCheckHealth_FailedRead(t *testing.T) {
	c := newFakeClient(t)
	a := newTestArena(t, c)
	a.session.Health = 50

	a.CheckHealth()

	assert.Equal(t, 50, a.session.Health)
	assert.False(t, a.session.Flags.AggressiveRoll)
}

func TestClearAnvil(t *testing.T) {
	c := newFakeClient(t)
	a := newTestArena(t, c)
	knownUnit(t, a, c, "Ahri", 0)
	a.session.AnvilFree[3] = true
	c.texts[c.layout.AnvilMsg] = []string{"ChooseOne"}

	a.ClearAnvil()

	assert.Len(t, c.presses, 7)
	assert.NotContains(t, c.presses, c.layout.Bench[0])
	assert.NotContains(t, c.presses, c.layout.Bench[3])
	assert.Equal(t, []screen.Vec2{c.layout.Buy[anvilChoice]}, c.clicks)
}

func TestClearAnvil_NoPrompt(t *testing.T) {
	c := newFakeClient(t)
	a := newTestArena(t, c)
	c.texts[c.layout.AnvilMsg] = []string{"Choose"}

	a.ClearAnvil()

	assert.Len(t, c.presses, 9)
	assert.Empty(t, c.clicks)
}

func TestPublishLabels(t *testing.T) {
	c := newFakeClient(t)
	a := newTestArena(t, c)
	sink := &recordingSink{}
	a.WithStatusSink(sink)

	knownUnit(t, a, c, "Ahri", 0)
	boardUnit(t, a, "Annie")
	a.session.BoardUnknown = []UnknownPlacement{{Name: "MissFortune", Hex: 1}}

	a.PublishLabels()

	require.Len(t, sink.published, 1)
	assert.Equal(t, []Label{
		{Text: "Ahri", Coord: c.layout.Bench[0]},
		{Text: "Annie", Coord: c.layout.Board[0]},
		{Text: "Miss Fortune", Coord: c.layout.Board[1]},
	}, sink.published[0])
}

func TestPublishLabels_NoSink(t *testing.T) {
	c := newFakeClient(t)
	a := newTestArena(t, c)
	knownUnit(t, a, c, "Ahri", 0)

	assert.NotPanics(t, a.PublishLabels)
	assert.Len(t, a.Labels(), 1)
}

func TestStartRound_HeadlinerReset(t *testing.T) {
	tests := []struct {
		reset HeadlinerReset
		want  bool
	}{
		{reset: HeadlinerResetSession, want: true},
		{reset: HeadlinerResetRound, want: false},
	}

	for _, tc := range tests {
		t.Run(string(tc.reset), func(t *testing.T) {
			c := newFakeClient(t)
			a := newTestArena(t, c).WithHeadlinerReset(tc.reset)
			a.session.Flags.HeadlinerAcquired = true

			a.StartRound()

			assert.Equal(t, 1, a.session.Round)
			assert.Equal(t, tc.want, a.session.Flags.HeadlinerAcquired)
		})
	}
}

func TestParseHeadlinerReset(t *testing.T) {
	got, err := ParseHeadlinerReset("")
	assert.NoError(t, err)
	assert.Equal(t, HeadlinerResetSession, got)

	got, err = ParseHeadlinerReset("round")
	assert.NoError(t, err)
	assert.Equal(t, HeadlinerResetRound, got)

	_, err = ParseHeadlinerReset("match")
	assert.Error(t, err)
}

func TestNewSession(t *testing.T) {
	c := newFakeClient(t)
	a := newTestArena(t, c)

	s := a.Session()
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", s.ID.String())
	assert.Equal(t, map[string]int{"Ahri": 3, "Annie": 9, "Galio": 3, "Zed": 1}, s.Targets)
	for i, slot := range s.Bench {
		assert.True(t, slot.IsEmpty(), "slot %d", i)
	}
}
