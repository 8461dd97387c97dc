package function

import (
	"fmt"

	"github.com/andrescamacho/marssim-go/internal/domain/marstime"
	"github.com/andrescamacho/marssim-go/internal/domain/resource"
	"github.com/andrescamacho/marssim-go/internal/domain/shared"
	"github.com/andrescamacho/marssim-go/internal/domain/spot"
	"github.com/andrescamacho/marssim-go/internal/domain/unit"
)

// LivingAccommodation holds the beds of a building. Beds are activity spots;
// two adjacent beds with the same name form a bunk pair whose occupants must
// share a gender unless the caller bypasses the rule.
type LivingAccommodation struct {
	base

	guestHouse        bool
	washWaterPerMsol  float64 // kg per sleeper per millisol
	greyWaterFraction float64
	powerRequired     float64
}

// NewLivingAccommodation builds the beds from the spec's activity spots, or
// generates capacity single beds when none are listed. Properties:
// guest-house, wash-water-usage (kg per person per sol), grey-water-fraction,
// power-required.
func NewLivingAccommodation(ref BuildingRef, spec Spec) (*LivingAccommodation, error) {
	guest, err := spec.BoolProperty("guest-house", false)
	if err != nil {
		return nil, err
	}
	wash, err := spec.DoubleProperty("wash-water-usage", 26.0)
	if err != nil {
		return nil, err
	}
	grey, err := spec.DoubleProperty("grey-water-fraction", 0.8)
	if err != nil {
		return nil, err
	}
	if grey < 0 || grey > 1 {
		return nil, shared.NewValidationError("grey-water-fraction", "must be within [0, 1]")
	}
	power, err := spec.DoubleProperty("power-required", 0)
	if err != nil {
		return nil, err
	}

	la := &LivingAccommodation{
		base:              newBase(TypeLivingAccommodation, ref, spec),
		guestHouse:        guest,
		washWaterPerMsol:  wash / marstime.MillisolsPerSol,
		greyWaterFraction: grey,
		powerRequired:     power,
	}
	if la.spots.Len() == 0 {
		for i := 0; i < spec.Capacity; i++ {
			la.spots.Add(spot.NewActivitySpot(fmt.Sprintf("Bed %d", i+1), shared.NewLocalPosition(float64(i), 0)))
		}
	}
	if la.spots.Len() == 0 {
		return nil, shared.NewValidationError("capacity", "living accommodation needs at least one bed")
	}
	return la, nil
}

func (la *LivingAccommodation) IsGuestHouse() bool { return la.guestHouse }
func (la *LivingAccommodation) NumBeds() int       { return la.spots.Len() }
func (la *LivingAccommodation) NumOccupied() int   { return la.spots.NumOccupied() }
func (la *LivingAccommodation) NumEmpty() int      { return la.spots.NumEmpty() }

// AssignBed walks the beds in order and claims the first one p may take.
// A bed whose preceding bed shares its name is the second half of a bunk pair:
// it is skipped when the first half is held by someone of another gender,
// unless bypassGender is set. The lease is recorded on the person.
func (la *LivingAccommodation) AssignBed(ctx Context, p *unit.Person, permanent, bypassGender bool) *spot.AllocatedSpot {
	beds := la.spots.All()
	for i, bed := range beds {
		if !bed.IsEmpty() {
			continue
		}
		if !bypassGender && i > 0 && la.genderClash(ctx, beds[i-1], bed, p) {
			continue
		}

		if lease := la.claimBed(ctx, p, bed, permanent); lease != nil {
			return lease
		}
	}
	return nil
}

// AssignEmptyBed claims the n-th empty bed (0-based, in bed order) for p
// regardless of bunk pairing. Nil when there are not that many empty beds.
func (la *LivingAccommodation) AssignEmptyBed(ctx Context, p *unit.Person, n int, permanent bool) *spot.AllocatedSpot {
	if n < 0 {
		return nil
	}
	for _, bed := range la.spots.All() {
		if !bed.IsEmpty() {
			continue
		}
		if n == 0 {
			return la.claimBed(ctx, p, bed, permanent)
		}
		n--
	}
	return nil
}

func (la *LivingAccommodation) claimBed(ctx Context, p *unit.Person, bed *spot.ActivitySpot, permanent bool) *spot.AllocatedSpot {
	lease := bed.Claim(p, permanent, la.building.ID)
	if lease == nil {
		return nil
	}
	p.AssignBed(lease)

	if !permanent && la.spots.NumEmpty() == 0 {
		la.logf(ctx, shared.LevelInfo, "%s took the last bed %s as a guest.", p.Name(), bed.Name())
	} else {
		la.logf(ctx, shared.LevelDebug, "%s was assigned bed %s (permanent=%t).", p.Name(), bed.Name(), permanent)
	}
	return lease
}

func (la *LivingAccommodation) genderClash(ctx Context, prev, bed *spot.ActivitySpot, p *unit.Person) bool {
	if prev.Name() != bed.Name() || prev.IsEmpty() {
		return false
	}
	other, ok := ctx.Person(prev.OwnerID())
	return ok && other.Gender() != p.Gender()
}

func (la *LivingAccommodation) TimePassing(ctx Context, pulse marstime.Pulse) bool {
	if !la.isValid(ctx, pulse) {
		return false
	}
	la.generateWaste(ctx, pulse.Elapsed())
	return true
}

// generateWaste turns sleepers' wash water into grey and black water
func (la *LivingAccommodation) generateWaste(ctx Context, elapsed float64) {
	sleepers := la.spots.NumOccupied()
	if sleepers == 0 {
		return
	}
	store := ctx.Store()
	need := la.washWaterPerMsol * elapsed * float64(sleepers)
	shortfall := store.RetrieveAmountResource(resource.Water, need)
	if shortfall > 0 {
		la.logf(ctx, shared.LevelWarning, "Short of %.3f kg of wash water.", shortfall)
	}
	used := need - shortfall
	grey := used * la.greyWaterFraction
	store.StoreAmountResource(resource.GreyWater, grey)
	store.StoreAmountResource(resource.BlackWater, used-grey)
}

func (la *LivingAccommodation) CombinedPowerLoad() float64 { return la.powerRequired }

func (la *LivingAccommodation) MaintenanceTime() float64 {
	return float64(la.spots.Len()) * 7
}
