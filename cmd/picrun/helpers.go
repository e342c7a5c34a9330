package main

import (
	"go.uber.org/zap"

	"github.com/deveworld/picengine/internal/fieldbc"
	"github.com/deveworld/picengine/internal/particlebc"
	"github.com/deveworld/picengine/internal/species"
)

// zapErrorField wraps an error as the zap.Field logging.ConfigError
// expects, so callers in this package don't need to import zap just to
// report one.
func zapErrorField(err error) zap.Field {
	return zap.Error(err)
}

// radiationModelOf maps a config.Species.RadiationModel string onto
// the species package's RadiationModel enum. An empty or unrecognized
// string yields species.RadiationNone, matching spec.md §6's
// "radiation_model defaults to none" behavior.
func radiationModelOf(name string) (species.RadiationModel, error) {
	switch name {
	case "", "none":
		return species.RadiationNone, nil
	case "Landau-Lifshitz", "ll":
		return species.RadiationLandauLifshitz, nil
	case "corrected-Landau-Lifshitz", "cll":
		return species.RadiationCorrectedLL, nil
	case "Niel", "niel":
		return species.RadiationNiel, nil
	case "Monte-Carlo", "mc":
		return species.RadiationMonteCarlo, nil
	}
	return species.RadiationNone, errUnknownRadiationModel{name}
}

type errUnknownRadiationModel struct{ name string }

func (e errUnknownRadiationModel) Error() string {
	return "unknown radiation_model " + e.name
}

// particleBoundaryConditionsOf maps a config.Species.BoundaryConditions
// axis/side string table onto particlebc.Kind values, per spec.md §6's
// per-species "boundary_conditions" block and §4.7's named kinds.
func particleBoundaryConditionsOf(raw [][2]string) ([][2]particlebc.Kind, error) {
	if raw == nil {
		return nil, nil
	}
	out := make([][2]particlebc.Kind, len(raw))
	for axis, sides := range raw {
		for side, name := range sides {
			kind, err := particlebc.ParseKind(name)
			if err != nil {
				return nil, err
			}
			out[axis][side] = kind
		}
	}
	return out, nil
}

// fieldBoundaryConditionsOf maps cfg.Main's per-axis EM_boundary_conditions
// string table onto fieldbc.Kind values, per spec.md §6's "EM_boundary_
// conditions" field and §4.6's named kinds.
func fieldBoundaryConditionsOf(raw [][2]string) ([][2]fieldbc.Kind, error) {
	out := make([][2]fieldbc.Kind, len(raw))
	for axis, sides := range raw {
		for side, name := range sides {
			kind, err := fieldbc.ParseKind(name)
			if err != nil {
				return nil, err
			}
			out[axis][side] = kind
		}
	}
	return out, nil
}
