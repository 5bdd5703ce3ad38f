package arena

import (
	"testing"
	"time"

	"github.com/jwebster45206/arena-engine/pkg/screen"
	"github.com/stretchr/testify/assert"
)

// offerAugments queues successive reads of the three augment regions.
func offerAugments(c *fakeClient, reads ...[3]string) {
	for _, read := range reads {
		for i, text := range read {
			region := c.layout.AugmentText[i]
			c.texts[region] = append(c.texts[region], text)
		}
	}
}

func countClicks(c *fakeClient, pts ...screen.Vec2) int {
	n := 0
	for _, click := range c.clicks {
		for _, pt := range pts {
			if click == pt {
				n++
			}
		}
	}
	return n
}

func TestPickAugment_PriorityMatch(t *testing.T) {
	c := newFakeClient(t)
	a := newTestArena(t, c)
	offerAugments(c, [3]string{"Spoils of War", "Built Different II", "Cybernetic Bloodline"})

	got := a.PickAugment()

	assert.Equal(t, 1, got)
	assert.Equal(t, []screen.Vec2{c.layout.AugmentPick[1]}, c.clicks)
	assert.False(t, a.session.Flags.AugmentRerollUsed)
}

func TestPickAugment_PriorityOrderBeatsOptionOrder(t *testing.T) {
	c := newFakeClient(t)
	a := newTestArena(t, c)
	offerAugments(c, [3]string{"Built Different", "Spoils of War", "Tactician's Crown"})

	assert.Equal(t, 2, a.PickAugment())
}

func TestPickAugment_RerollsExactlyOnce(t *testing.T) {
	c := newFakeClient(t)
	a := newTestArena(t, c)
	offerAugments(c,
		[3]string{"Rolling for Initiative", "Trash Panda", "Second Wind"},
		[3]string{"Rolling for Initiative", "Trash Panda", "Second Wind"},
	)

	got := a.PickAugment()

	assert.Equal(t, 3, countClicks(c, c.layout.AugmentRoll[:]...), "each reroll button pressed once")
	assert.True(t, a.session.Flags.AugmentRerollUsed)
	assert.Equal(t, 2, got, "first option outside the avoid list")
	assert.Equal(t, c.layout.AugmentPick[2], c.clicks[len(c.clicks)-1])
}

func TestPickAugment_MatchAfterReroll(t *testing.T) {
	c := newFakeClient(t)
	a := newTestArena(t, c)
	offerAugments(c,
		[3]string{"Rolling for Initiative", "Trash Panda", "Second Wind"},
		[3]string{"Pandora's Items", "Tactician's Crown", "Jeweled Lotus"},
	)

	assert.Equal(t, 1, a.PickAugment())
	assert.Equal(t, 3, countClicks(c, c.layout.AugmentRoll[:]...))
}

func TestPickAugment_AvoidAfterRerollUsed(t *testing.T) {
	c := newFakeClient(t)
	a := newTestArena(t, c)
	a.session.Flags.AugmentRerollUsed = true
	offerAugments(c, [3]string{"Rolling for Initiative", "Trash Panda", "Second Wind"})

	assert.Equal(t, 2, a.PickAugment())
	assert.Zero(t, countClicks(c, c.layout.AugmentRoll[:]...))
}

func TestPickAugment_AllAvoided(t *testing.T) {
	c := newFakeClient(t)
	a := newTestArena(t, c)
	a.session.Flags.AugmentRerollUsed = true
	offerAugments(c, [3]string{"Rolling for Initiative", "Trash Panda", "Rolling Again"})

	assert.Equal(t, 0, a.PickAugment())
	assert.Equal(t, []screen.Vec2{c.layout.AugmentPick[0]}, c.clicks)
}

func TestPickAugment_PollsUntilReadable(t *testing.T) {
	c := newFakeClient(t)
	polls := 0
	a := newTestArena(t, c)
	a.WithSleep(func(d time.Duration) {
		if d == settleAugment {
			polls++
		}
	})
	offerAugments(c,
		[3]string{"Spoils of War", "", "Cybernetic Bloodline"},
		[3]string{"Spoils of War", "Built Different", "Cybernetic Bloodline"},
	)

	assert.Equal(t, 1, a.PickAugment())
	assert.Equal(t, 2, polls)
}

func TestPickAugment_UnreadableFallsBack(t *testing.T) {
	c := newFakeClient(t)
	a := newTestArena(t, c).WithLimits(3, 0)

	assert.Equal(t, 0, a.PickAugment())
	assert.Equal(t, []screen.Vec2{c.layout.AugmentPick[0]}, c.clicks)
	assert.False(t, a.session.Flags.AugmentRerollUsed)
}

func TestMatchPriority(t *testing.T) {
	tests := []struct {
		name     string
		options  []string
		priority []string
		want     int
	}{
		{name: "no priority", options: []string{"A", "B", "C"}, want: -1},
		{name: "substring", options: []string{"Alpha", "Beta II", "Gamma"}, priority: []string{"Beta"}, want: 1},
		{name: "first entry wins", options: []string{"Alpha", "Beta"}, priority: []string{"Beta", "Alpha"}, want: 1},
		{name: "no match", options: []string{"Alpha"}, priority: []string{"Omega"}, want: -1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, matchPriority(tc.options, tc.priority))
		})
	}
}
