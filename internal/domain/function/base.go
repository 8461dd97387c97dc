package function

import (
	"fmt"

	"github.com/andrescamacho/marssim-go/internal/domain/marstime"
	"github.com/andrescamacho/marssim-go/internal/domain/shared"
	"github.com/andrescamacho/marssim-go/internal/domain/spot"
)

// base carries what every function shares: identity, owning building,
// activity spots and the last pulse seen.
type base struct {
	ftype     Type
	building  BuildingRef
	techLevel int
	spots     *spot.Set
	lastPulse int64
}

func newBase(t Type, ref BuildingRef, spec Spec) base {
	set := spot.NewSet()
	for _, s := range spec.ActivitySpots {
		set.Add(spot.NewActivitySpot(s.Name, s.Position))
	}
	return base{ftype: t, building: ref, techLevel: spec.TechLevel, spots: set}
}

func (b *base) Type() Type                        { return b.ftype }
func (b *base) BuildingID() int                   { return b.building.ID }
func (b *base) Building() BuildingRef             { return b.building }
func (b *base) TechLevel() int                    { return b.techLevel }
func (b *base) ActivitySpots() *spot.Set          { return b.spots }
func (b *base) PoweredDownPowerRequired() float64 { return 0 }

// Destroy empties the activity spots
func (b *base) Destroy() {
	b.spots.Clear()
}

// ClaimActivitySpot gives w the first free spot
func (b *base) ClaimActivitySpot(w spot.Worker, permanent bool) *spot.AllocatedSpot {
	for _, s := range b.spots.All() {
		if lease := s.Claim(w, permanent, b.building.ID); lease != nil {
			return lease
		}
	}
	return nil
}

// isValid accepts each pulse once. Repeated or stale pulses are logged and ignored.
func (b *base) isValid(ctx Context, pulse marstime.Pulse) bool {
	if pulse.ID() <= b.lastPulse {
		b.logf(ctx, shared.LevelWarning, "Repeated pulse #%d (last seen #%d).", pulse.ID(), b.lastPulse)
		return false
	}
	b.lastPulse = pulse.ID()
	return true
}

func (b *base) source() string {
	return fmt.Sprintf("%s:%s", b.building.Name, b.ftype)
}

func (b *base) logf(ctx Context, level, format string, args ...interface{}) {
	ctx.Logger().Log(level, fmt.Sprintf(format, args...), map[string]interface{}{
		shared.MetaSource:   b.source(),
		shared.MetaTemplate: format,
		"building":          b.building.Name,
		"function":          b.ftype.String(),
	})
}
