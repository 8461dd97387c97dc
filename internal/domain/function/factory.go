package function

import (
	"fmt"

	"github.com/andrescamacho/marssim-go/internal/domain/shared"
)

// New builds the function described by spec for the given building
func New(ref BuildingRef, spec Spec) (Function, error) {
	var (
		f   Function
		err error
	)
	switch spec.Type {
	case TypeLifeSupport:
		f, err = NewLifeSupport(ref, spec)
	case TypeLivingAccommodation:
		f, err = NewLivingAccommodation(ref, spec)
	case TypeStorage:
		f, err = NewStorage(ref, spec)
	case TypeComputation:
		f, err = NewComputation(ref, spec)
	case TypeResearch:
		f, err = NewResearch(ref, spec)
	case TypeAstronomicalObservation:
		f, err = NewAstronomicalObservation(ref, spec)
	case TypeManufacture:
		f, err = NewManufacture(ref, spec)
	case TypeFoodProduction:
		f, err = NewFoodProduction(ref, spec)
	case TypeMedicalCare:
		f, err = NewMedicalCare(ref, spec)
	case TypeVehicleMaintenance:
		f, err = NewVehicleMaintenance(ref, spec)
	case TypeWasteProcessing:
		f, err = NewWasteProcessing(ref, spec)
	case TypeEVA:
		f, err = NewEVA(ref, spec)
	default:
		return nil, shared.NewValidationError("function", fmt.Sprintf("unsupported function type %s", spec.Type))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build %s for %s: %w", spec.Type, ref.Name, err)
	}
	return f, nil
}
