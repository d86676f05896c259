package convoy

import (
	"github.com/cxd309/traction-engine/internal/numeric"
	"github.com/cxd309/traction-engine/internal/physics"
	"github.com/cxd309/traction-engine/internal/vehicle"
)

// ExistingConvoy is a live convoy. Its summaries include the current load,
// the way limit under every vehicle and per-vehicle speed overrides.
type ExistingConvoy struct {
	*Core
	vehicles    []*vehicle.Vehicle
	goods       vehicle.Goods
	powerFactor int32
}

// NewExistingConvoy wraps vehicles, front to back.
func NewExistingConvoy(vehicles []*vehicle.Vehicle, goods vehicle.Goods, settings physics.Settings) *ExistingConvoy {
	ec := &ExistingConvoy{vehicles: vehicles, goods: goods, powerFactor: settings.PowerFactorPercent}
	ec.Core = NewCore(ec, settings)
	return ec
}

// Len returns the number of vehicles.
func (ec *ExistingConvoy) Len() int { return len(ec.vehicles) }

// Vehicles returns the live vehicles front to back. Callers that modify them
// must Invalidate the convoy.
func (ec *ExistingConvoy) Vehicles() []*vehicle.Vehicle { return ec.vehicles }

func (ec *ExistingConvoy) desc(i int) *vehicle.Desc { return ec.vehicles[i].Desc }

// UpdateVehicleSummary recomputes s from the descriptors.
func (ec *ExistingConvoy) UpdateVehicleSummary(s *physics.VehicleSummary) {
	s.Clear()
	for _, v := range ec.vehicles {
		s.AddVehicle(v.Desc)
	}
	var last uint8
	if n := len(ec.vehicles); n > 0 {
		last = ec.vehicles[n-1].Desc.Length
	}
	s.UpdateSummary(last)
}

// UpdateAdverseSummary recomputes resistances and limits including way limits and overrides.
func (ec *ExistingConvoy) UpdateAdverseSummary(s *physics.AdverseSummary) {
	s.Clear()
	for i, v := range ec.vehicles {
		s.AddVehicle(v.Desc, i == 0)
		s.AddSpeedLimit(v.WaySpeedLimit)
		s.AddSpeedLimit(v.SpeedLimit)
	}
	s.Finish(len(ec.vehicles))
}

// UpdateFreightSummary recomputes the bounds of a full load.
func (ec *ExistingConvoy) UpdateFreightSummary(s *physics.FreightSummary) {
	s.Clear()
	for _, v := range ec.vehicles {
		s.AddVehicle(v.Desc, ec.goods)
	}
}

// UpdateWeightSummary adds every vehicle's current weight on the slope it
// stands on.
func (ec *ExistingConvoy) UpdateWeightSummary(s *physics.WeightSummary) {
	s.Clear()
	for _, v := range ec.vehicles {
		s.AddWeight(v.TotalWeight(), v.Slope)
	}
}

// WeightSummary returns a fresh weight summary.
func (ec *ExistingConvoy) WeightSummary() physics.WeightSummary {
	var s physics.WeightSummary
	ec.UpdateWeightSummary(&s)
	return s
}

// BrakeSummary sums the declared brake forces, falling back to the braked
// weight for vehicles that declare none.
func (ec *ExistingConvoy) BrakeSummary(int32) numeric.Float {
	return brakeSummary(len(ec.vehicles), ec.desc, func(i int) uint32 { return ec.vehicles[i].TotalWeight() })
}

// ForceSummary sums the tractive force in kN at speed.
func (ec *ExistingConvoy) ForceSummary(speed int32) int32 {
	return forceSummary(len(ec.vehicles), ec.desc, speed, ec.powerFactor)
}

// PowerSummary sums the power in kW at speed.
func (ec *ExistingConvoy) PowerSummary(speed int32) int32 {
	return powerSummary(len(ec.vehicles), ec.desc, speed, ec.powerFactor)
}

// CurrentFriction is the friction factor under the leading vehicle.
func (ec *ExistingConvoy) CurrentFriction() int32 {
	if len(ec.vehicles) == 0 {
		return 0
	}
	return ec.vehicles[0].FrictionFactor()
}
