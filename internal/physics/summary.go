package physics

import (
	"math"

	"github.com/cxd309/traction-engine/internal/numeric"
	"github.com/cxd309/traction-engine/internal/vehicle"
)

// SpeedUnlimited is the running minimum's start value for speed summaries.
const SpeedUnlimited = math.MaxInt32

// VehicleSummary aggregates the static size and speed of a convoy.
type VehicleSummary struct {
	Length   uint32 // car units
	Tiles    uint32 // tiles the convoy occupies
	Weight   uint32 // kg, empty
	MaxSpeed int32  // km/h, slowest top speed
}

// Clear resets s before a new pass over the vehicles.
func (s *VehicleSummary) Clear() {
	*s = VehicleSummary{MaxSpeed: SpeedUnlimited}
}

// AddVehicle folds one descriptor in.
func (s *VehicleSummary) AddVehicle(d *vehicle.Desc) {
	s.Length += uint32(d.Length)
	s.Weight = vehicle.AddSaturated(s.Weight, d.Weight)
	s.MaxSpeed = min(s.MaxSpeed, int32(d.TopSpeed))
}

// UpdateSummary finishes a pass. A last vehicle shorter than half a tile still
// occupies half a tile.
func (s *VehicleSummary) UpdateSummary(lastLength uint8) {
	if s.MaxSpeed == SpeedUnlimited {
		s.MaxSpeed = 0
	}
	if s.Length == 0 {
		s.Tiles = 0
		return
	}
	pad := max(uint32(lastLength), vehicle.CarUnitsPerTile/2) - uint32(lastLength)
	s.Tiles = (s.Length + pad + vehicle.CarUnitsPerTile - 1) / vehicle.CarUnitsPerTile
}

// AdverseSummary aggregates the forces and limits working against a convoy.
type AdverseSummary struct {
	CF       numeric.Float // drag coefficient of the leading vehicle
	FR       numeric.Float // rolling resistance; a sum until Finish averages it
	BR       numeric.Float // braking deceleration of the waytype, m/s²
	MaxSpeed int32         // km/h, lowest of all top speeds and way limits
}

// Clear resets s before a new pass over the vehicles.
func (s *AdverseSummary) Clear() {
	*s = AdverseSummary{MaxSpeed: SpeedUnlimited}
}

// AddVehicle folds one descriptor in. Only the leading vehicle's nose
// decides the air resistance.
func (s *AdverseSummary) AddVehicle(d *vehicle.Desc, leading bool) {
	if leading {
		s.CF = d.AirResistanceCoefficient()
	}
	s.FR = s.FR.Add(d.RollingResistanceCoefficient())
	if s.BR.IsZero() {
		s.BR = vehicle.BrakingCoefficient(d.Waytype)
	}
	s.AddSpeedLimit(int32(d.TopSpeed))
}

// AddSpeedLimit folds a way limit or speed override in km/h; 0 means none.
func (s *AdverseSummary) AddSpeedLimit(kmh int32) {
	if kmh > 0 && kmh < s.MaxSpeed {
		s.MaxSpeed = kmh
	}
}

// Finish averages FR over count vehicles.
func (s *AdverseSummary) Finish(count int) {
	if count == 0 {
		s.MaxSpeed = 0
		return
	}
	s.FR = s.FR.Div(numeric.FromInt(int64(count)))
}

// FreightSummary bounds the weight of a full load, in kg.
type FreightSummary struct {
	MinFreightWeight uint32
	MaxFreightWeight uint32
}

// Clear resets s before a new pass over the vehicles.
func (s *FreightSummary) Clear() { *s = FreightSummary{} }

// AddVehicle adds the bounds of a full load of d. Unknown categories weigh
// nothing.
func (s *FreightSummary) AddVehicle(d *vehicle.Desc, goods vehicle.Goods) {
	if d.Capacity == 0 || goods == nil {
		return
	}
	r, ok := goods.WeightRange(d.FreightCategory)
	if !ok {
		return
	}
	lo, hi := r.Of(d.Capacity)
	s.MinFreightWeight = vehicle.AddSaturated(s.MinFreightWeight, lo)
	s.MaxFreightWeight = vehicle.AddSaturated(s.MaxFreightWeight, hi)
}

// WeightSummary is a convoy's weight split into the components along and
// perpendicular to the slope each vehicle stands on.
type WeightSummary struct {
	Weight    numeric.Float // kg
	WeightSin numeric.Float // kg, along the slope
	WeightCos numeric.Float // kg, perpendicular to it
}

// NewWeightSummary returns the summary of kg resting on one slope.
func NewWeightSummary(kg uint32, sinPermille int16) WeightSummary {
	var s WeightSummary
	s.AddWeight(kg, sinPermille)
	return s
}

// Clear resets s to zero weight.
func (s *WeightSummary) Clear() { *s = WeightSummary{} }

// AddWeight adds kg standing on a slope whose sine is sinPermille/1000.
func (s *WeightSummary) AddWeight(kg uint32, sinPermille int16) {
	w := numeric.FromInt(int64(kg))
	s.Weight = s.Weight.Add(w)
	if sinPermille == 0 {
		s.WeightCos = s.WeightCos.Add(w)
		return
	}
	sin := numeric.Ratio(int64(max(min(sinPermille, 1000), -1000)), 1000)
	cos := numeric.One.Sub(sin.Mul(sin)).Sqrt()
	s.WeightSin = s.WeightSin.Add(w.Mul(sin))
	s.WeightCos = s.WeightCos.Add(w.Mul(cos))
}
