package physics

import (
	"github.com/cxd309/traction-engine/internal/numeric"
	"github.com/cxd309/traction-engine/internal/vehicle"
)

// StepsPerTile is the number of vehicle steps in one tile.
const StepsPerTile = 256

// Settings are the world parameters the physics depends on.
type Settings struct {
	MetersPerTile        int32 `json:"meters_per_tile"`
	PowerFactorPercent   int32 `json:"power_factor_percent"`
	SimtimeFactorPercent int32 `json:"simtime_factor_percent"`
}

// DefaultSettings returns 1 km tiles at 100% power and time factors.
func DefaultSettings() Settings {
	return Settings{MetersPerTile: 1000, PowerFactorPercent: 100, SimtimeFactorPercent: 100}
}

// MetersPerStep is the length of one vehicle step.
func (s Settings) MetersPerStep() numeric.Float {
	return numeric.Ratio(int64(s.MetersPerTile), StepsPerTile)
}

// StepsToMeters converts vehicle steps to m.
func (s Settings) StepsToMeters(steps int32) numeric.Float {
	return numeric.FromInt(int64(steps)).Mul(s.MetersPerStep())
}

// MetersToSteps truncates toward zero.
func (s Settings) MetersToSteps(m numeric.Float) int32 {
	return m.Div(s.MetersPerStep()).Int32()
}

// CarUnitsToMeters converts a vehicle length.
func (s Settings) CarUnitsToMeters(units uint32) numeric.Float {
	return numeric.Ratio(int64(units)*int64(s.MetersPerTile), vehicle.CarUnitsPerTile)
}

// SimtimeFactor scales accelerations to the compressed game time.
func (s Settings) SimtimeFactor() numeric.Float {
	if s.SimtimeFactorPercent <= 0 {
		return numeric.One
	}
	return numeric.Ratio(int64(s.SimtimeFactorPercent), 100)
}
