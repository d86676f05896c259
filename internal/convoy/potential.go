package convoy

import (
	"github.com/cxd309/traction-engine/internal/numeric"
	"github.com/cxd309/traction-engine/internal/physics"
	"github.com/cxd309/traction-engine/internal/vehicle"
)

// PotentialConvoy is a convoy that exists only as a list of descriptors, as
// used for purchase and upgrade previews. It has no position and no load.
type PotentialConvoy struct {
	*Core
	vehicles    []*vehicle.Desc
	goods       vehicle.Goods
	powerFactor int32
}

// NewPotentialConvoy wraps vehicles, front to back.
func NewPotentialConvoy(vehicles []*vehicle.Desc, goods vehicle.Goods, settings physics.Settings) *PotentialConvoy {
	pc := &PotentialConvoy{vehicles: vehicles, goods: goods, powerFactor: settings.PowerFactorPercent}
	pc.Core = NewCore(pc, settings)
	return pc
}

// Len returns the number of vehicles.
func (pc *PotentialConvoy) Len() int { return len(pc.vehicles) }

func (pc *PotentialConvoy) desc(i int) *vehicle.Desc { return pc.vehicles[i] }

// UpdateVehicleSummary recomputes s from the descriptors.
func (pc *PotentialConvoy) UpdateVehicleSummary(s *physics.VehicleSummary) {
	s.Clear()
	for _, d := range pc.vehicles {
		s.AddVehicle(d)
	}
	var last uint8
	if n := len(pc.vehicles); n > 0 {
		last = pc.vehicles[n-1].Length
	}
	s.UpdateSummary(last)
}

// UpdateAdverseSummary recomputes resistances and limits.
func (pc *PotentialConvoy) UpdateAdverseSummary(s *physics.AdverseSummary) {
	s.Clear()
	for i, d := range pc.vehicles {
		s.AddVehicle(d, i == 0)
	}
	s.Finish(len(pc.vehicles))
}

// UpdateFreightSummary recomputes the bounds of a full load.
func (pc *PotentialConvoy) UpdateFreightSummary(s *physics.FreightSummary) {
	s.Clear()
	for _, d := range pc.vehicles {
		s.AddVehicle(d, pc.goods)
	}
}

// BrakeSummary sums the declared brake forces, falling back to the braked
// weight for vehicles that declare none.
func (pc *PotentialConvoy) BrakeSummary(int32) numeric.Float {
	return brakeSummary(len(pc.vehicles), pc.desc, func(i int) uint32 { return pc.vehicles[i].Weight })
}

// ForceSummary sums the tractive force in kN at speed.
func (pc *PotentialConvoy) ForceSummary(speed int32) int32 {
	return forceSummary(len(pc.vehicles), pc.desc, speed, pc.powerFactor)
}

// PowerSummary sums the power in kW at speed.
func (pc *PotentialConvoy) PowerSummary(speed int32) int32 {
	return powerSummary(len(pc.vehicles), pc.desc, speed, pc.powerFactor)
}

// CurrentFriction is the friction factor under the leading vehicle.
func (pc *PotentialConvoy) CurrentFriction() int32 {
	if len(pc.vehicles) == 0 {
		return 0
	}
	return vehicle.FrictionOf(pc.vehicles[0].Waytype)
}

// PreviewWeight returns the weight summary of the convoy standing on level
// ground, empty or carrying its heaviest possible load.
func (pc *PotentialConvoy) PreviewWeight(loaded bool) physics.WeightSummary {
	kg := pc.VehicleSummary().Weight
	if loaded {
		kg = vehicle.AddSaturated(kg, pc.FreightSummary().MaxFreightWeight)
	}
	return physics.NewWeightSummary(kg, 0)
}
