// Package vehicle defines vehicle descriptors (the static attributes of a
// vehicle type) and live vehicles (a descriptor plus load and position
// dependent state) as consumed by the traction physics.
package vehicle

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cxd309/traction-engine/internal/numeric"
)

const (
	// BrakeForceUnknown marks a descriptor without a declared brake force.
	BrakeForceUnknown = 65535
	// GearFactor is the gear value meaning a ratio of 1.0.
	GearFactor = 64
	// CarUnitsPerTile is the number of length units in one tile.
	CarUnitsPerTile = 16
)

var (
	ErrUnknownWaytype = errors.New("unknown waytype")
	ErrInvalidDesc    = errors.New("invalid vehicle descriptor")
)

// Desc holds the static parameters of a vehicle type. Units are the ones the
// descriptor files use, not SI: see the field comments.
type Desc struct {
	Name              string  `json:"name"`
	Waytype           Waytype `json:"waytype"`
	Length            uint8   `json:"length"`             // car units, CarUnitsPerTile per tile
	Weight            uint32  `json:"weight"`             // kg, empty
	TopSpeed          uint16  `json:"top_speed"`          // km/h
	Power             uint32  `json:"power"`              // kW
	TractiveEffort    uint32  `json:"tractive_effort"`    // kN; 0 derives it from power and top speed
	Gear              uint16  `json:"gear"`               // GearFactor = 1.0
	BrakeForce        uint16  `json:"brake_force"`        // kN, BrakeForceUnknown if not declared
	AirResistance     uint16  `json:"air_resistance"`     // cf·100, 0 = waytype default
	RollingResistance uint16  `json:"rolling_resistance"` // fr·10000, 0 = waytype default
	Capacity          uint16  `json:"capacity"`           // payload units
	FreightCategory   string  `json:"freight_category,omitempty"`
}

// UnmarshalJSON fills in the defaults a descriptor file would imply: an
// omitted brake force is unknown and an omitted gear is 1.0.
func (d *Desc) UnmarshalJSON(data []byte) error {
	type plain Desc
	aux := plain{BrakeForce: BrakeForceUnknown, Gear: GearFactor}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*d = Desc(aux)
	return nil
}

// Validate reports descriptor values the physics cannot work with.
func (d *Desc) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidDesc)
	}
	if _, err := ParseWaytype(string(d.Waytype)); err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInvalidDesc, d.Name, err)
	}
	if d.TopSpeed == 0 {
		return fmt.Errorf("%w: %q: top speed must be positive", ErrInvalidDesc, d.Name)
	}
	return nil
}

func (d *Desc) gear() int64 {
	if d.Gear == 0 {
		return GearFactor
	}
	return int64(d.Gear)
}

// GearedPower is power in kW times gear.
func (d *Desc) GearedPower() int64 { return int64(d.Power) * d.gear() }

// GearedForce is tractive effort in kN times gear. Powered vehicles without a
// declared tractive effort get the force their power yields at top speed.
func (d *Desc) GearedForce() int64 {
	if d.TractiveEffort > 0 {
		return int64(d.TractiveEffort) * d.gear()
	}
	if d.Power == 0 || d.TopSpeed == 0 {
		return 0
	}
	// kN = kW / (m/s), top speed km/h * 10/36
	f := d.GearedPower() * 36 / (int64(d.TopSpeed) * 10)
	return max(f, 1)
}

// ForceThresholdSpeed is the speed (m/s, rounded) above which the vehicle is
// power limited rather than force limited.
func (d *Desc) ForceThresholdSpeed() int64 {
	f := d.GearedForce()
	if f == 0 {
		return 0
	}
	return (d.GearedPower() + f/2) / f
}

// EffectiveForceIndex returns the available force at speed (m/s) as a force
// index (kN · gear).
func (d *Desc) EffectiveForceIndex(speed int32) int64 {
	f := d.GearedForce()
	if f == 0 {
		return 0
	}
	if int64(speed) <= d.ForceThresholdSpeed() {
		return f
	}
	return d.GearedPower() / int64(speed)
}

// EffectivePowerIndex returns the available power at speed (m/s) as a power
// index (kW · gear).
func (d *Desc) EffectivePowerIndex(speed int32) int64 {
	p := d.GearedPower()
	if p == 0 {
		return 0
	}
	if int64(speed) <= d.ForceThresholdSpeed() {
		return d.GearedForce() * int64(max(speed, 0))
	}
	return p
}

// HasBrakeForce reports whether the descriptor declares its brake force.
func (d *Desc) HasBrakeForce() bool { return d.BrakeForce != BrakeForceUnknown }

// BrakingForceKN returns the brake force of one vehicle in kN: the declared
// value, or br (m/s²) times the braked weight when none is declared.
func (d *Desc) BrakingForceKN(br numeric.Float, weightKg uint32) numeric.Float {
	if d.HasBrakeForce() {
		return numeric.FromInt(int64(d.BrakeForce))
	}
	return br.Mul(numeric.FromInt(int64(weightKg))).Div(thousand)
}

var thousand = numeric.FromInt(1000)

// AirResistanceCoefficient returns cf for this vehicle.
func (d *Desc) AirResistanceCoefficient() numeric.Float {
	if d.AirResistance == 0 {
		return DefaultAirResistance(d.Waytype)
	}
	return numeric.Ratio(int64(d.AirResistance), 100)
}

// RollingResistanceCoefficient returns fr for this vehicle.
func (d *Desc) RollingResistanceCoefficient() numeric.Float {
	if d.RollingResistance == 0 {
		return DefaultRollingResistance(d.Waytype)
	}
	return numeric.Ratio(int64(d.RollingResistance), 10000)
}
