package arena

import (
	"slices"

	"github.com/jwebster45206/arena-engine/pkg/screen"
)

// AssemblyState is where a unit is in building its item list.
type AssemblyState string

const (
	// NeedsItem: items remain in the build and nothing is half-built.
	NeedsItem AssemblyState = "needs_item"
	// Assembling: one component sits on the unit waiting for its partner.
	Assembling AssemblyState = "assembling"
	// Complete: nothing left to place.
	Complete AssemblyState = "complete"
)

// Pairing is a full item under construction and the component still missing.
type Pairing struct {
	Target  string `json:"target"`
	Missing string `json:"missing"`
}

// Assembly is the item-building sub-state of a unit.
type Assembly struct {
	State   AssemblyState `json:"state"`
	Pairing *Pairing      `json:"pairing,omitempty"`
}

// Unit is a purchased champion on the bench or board.
type Unit struct {
	Name      string      `json:"name"`
	Location  screen.Vec2 `json:"location"`
	Slot      int         `json:"slot"` // bench slot, or board hex once placed
	Build     []string    `json:"build"`
	Assembly  Assembly    `json:"assembly"`
	Completed []string    `json:"completed"`
	Size      int         `json:"size"`
	FinalComp bool        `json:"final_comp"`
}

func newUnit(name string, build []string, slot int, loc screen.Vec2, size int, finalComp bool) *Unit {
	if size <= 0 {
		size = 1
	}
	u := &Unit{
		Name:      name,
		Location:  loc,
		Slot:      slot,
		Build:     slices.Clone(build),
		Completed: []string{},
		Size:      size,
		FinalComp: finalComp,
	}
	u.settle()
	return u
}

// NeedsItems reports whether any item can still be placed on the unit
func (u *Unit) NeedsItems() bool {
	return u.Assembly.State != Complete
}

// Wants reports whether item is a completed item still in the unit's build
func (u *Unit) Wants(item string) bool {
	return slices.Contains(u.Build, item)
}

// placeFull moves a completed item from the build list to completed.
func (u *Unit) placeFull(item string) {
	u.Build = removeFirst(u.Build, item)
	u.Completed = append(u.Completed, item)
	u.settle()
}

// startAssembly places one component of target; missing is the other component.
func (u *Unit) startAssembly(target, missing string) {
	u.Build = removeFirst(u.Build, target)
	u.Assembly = Assembly{State: Assembling, Pairing: &Pairing{Target: target, Missing: missing}}
}

// finishAssembly places the missing component and completes the paired item.
func (u *Unit) finishAssembly() string {
	target := u.Assembly.Pairing.Target
	u.Completed = append(u.Completed, target)
	u.Assembly = Assembly{}
	u.settle()
	return target
}

// settle derives the assembly state from the build list unless a pairing is open.
func (u *Unit) settle() {
	if u.Assembly.State == Assembling && u.Assembly.Pairing != nil {
		return
	}
	u.Assembly.Pairing = nil
	if len(u.Build) == 0 {
		u.Assembly.State = Complete
		return
	}
	u.Assembly.State = NeedsItem
}

func removeFirst(list []string, item string) []string {
	i := slices.Index(list, item)
	if i < 0 {
		return list
	}
	return slices.Delete(list, i, i+1)
}
