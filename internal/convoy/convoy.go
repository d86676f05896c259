// Package convoy binds the traction physics to a list of vehicles.
//
// Core implements physics.Convoy on top of a Source and caches the summaries
// until Invalidate is called. Two sources exist: PotentialConvoy plans with
// vehicle descriptors only, ExistingConvoy works on live vehicles with their
// load, slopes and way limits. Both feed the same formulas, so equivalent
// vehicle lists give identical results.
package convoy

import (
	"github.com/cxd309/traction-engine/internal/numeric"
	"github.com/cxd309/traction-engine/internal/physics"
)

// Source is the contract an adapter fulfils for Core.
type Source interface {
	Len() int
	UpdateVehicleSummary(s *physics.VehicleSummary)
	UpdateAdverseSummary(s *physics.AdverseSummary)
	UpdateFreightSummary(s *physics.FreightSummary)

	// BrakeSummary is the total brake force in kN at speed (m/s).
	BrakeSummary(speed int32) numeric.Float
	// ForceSummary is the total tractive force in kN at speed (m/s).
	ForceSummary(speed int32) int32
	// PowerSummary is the total power in kW at speed (m/s).
	PowerSummary(speed int32) int32
	CurrentFriction() int32
}

var thousand = numeric.FromInt(1000)

// Core is the physics view of one convoy.
type Core struct {
	src      Source
	settings physics.Settings

	dirty   bool
	vehicle physics.VehicleSummary
	adverse physics.AdverseSummary
	freight physics.FreightSummary
}

// NewCore returns a Core reading from src. Summaries are computed on first
// use.
func NewCore(src Source, settings physics.Settings) *Core {
	return &Core{src: src, settings: settings, dirty: true}
}

// Invalidate marks the cached summaries stale. Call it whenever the vehicle
// list, a descriptor, a load or a vehicle's position changes.
func (c *Core) Invalidate() { c.dirty = true }

func (c *Core) refresh() {
	if !c.dirty {
		return
	}
	c.src.UpdateVehicleSummary(&c.vehicle)
	c.src.UpdateAdverseSummary(&c.adverse)
	c.src.UpdateFreightSummary(&c.freight)
	c.dirty = false
}

// Settings returns the settings the convoy was built with.
func (c *Core) Settings() physics.Settings { return c.settings }

// VehicleSummary returns the cached size and speed summary.
func (c *Core) VehicleSummary() physics.VehicleSummary {
	c.refresh()
	return c.vehicle
}

// AdverseSummary returns the cached resistances and speed limit.
func (c *Core) AdverseSummary() physics.AdverseSummary {
	c.refresh()
	return c.adverse
}

// FreightSummary returns the cached freight bounds.
func (c *Core) FreightSummary() physics.FreightSummary {
	c.refresh()
	return c.freight
}

// StartingForce returns the force at standstill, N.
func (c *Core) StartingForce() numeric.Float {
	return numeric.FromInt(int64(c.src.ForceSummary(0))).Mul(thousand)
}

// ContinuousPower returns the power at top speed, W.
func (c *Core) ContinuousPower() numeric.Float {
	v := physics.KmhToMs(c.VehicleSummary().MaxSpeed).Int32()
	return numeric.FromInt(int64(c.src.PowerSummary(v))).Mul(thousand)
}

// TractiveForce returns the force at v (m/s), N.
func (c *Core) TractiveForce(v numeric.Float) numeric.Float {
	return numeric.FromInt(int64(c.src.ForceSummary(v.Int32()))).Mul(thousand)
}

// BrakingForce returns the brake force at v (m/s), N.
func (c *Core) BrakingForce(v numeric.Float) numeric.Float {
	return c.src.BrakeSummary(v.Int32()).Mul(thousand)
}

// CalcMaxSpeed returns the top speed in km/h reachable with weight w.
func (c *Core) CalcMaxSpeed(w physics.WeightSummary) int32 {
	return physics.MaxSpeed(c, w)
}

// CalcMaxWeight returns the maximum total weight in kg that can be kept at
// top speed on slopePermille.
func (c *Core) CalcMaxWeight(slopePermille int16) uint32 {
	return physics.MaxWeight(c, slopePermille)
}

// CalcMaxStartingWeight returns the maximum total weight in kg that can be
// started on slopePermille.
func (c *Core) CalcMaxStartingWeight(slopePermille int16) uint32 {
	return physics.MaxStartingWeight(c, slopePermille)
}

// CalcMinBrakingDistance returns the stopping distance in m from v (m/s).
func (c *Core) CalcMinBrakingDistance(w physics.WeightSummary, v numeric.Float) numeric.Float {
	return physics.MinBrakingDistance(c, w, v)
}

// CalcMinBrakingSteps returns the stopping distance from speedKmh in vehicle
// steps, with a 10% margin.
func (c *Core) CalcMinBrakingSteps(w physics.WeightSummary, speedKmh int32) int32 {
	return physics.MinBrakingSteps(c, c.settings, w, speedKmh)
}

// CalcMove advances the convoy by one tick. Step length and simulation time
// factor default to the core's settings.
func (c *Core) CalcMove(in physics.MoveInput) physics.MoveResult {
	if in.MetersPerStep.IsZero() {
		in.MetersPerStep = c.settings.MetersPerStep()
	}
	if in.SimtimeFactor.IsZero() {
		in.SimtimeFactor = c.settings.SimtimeFactor()
	}
	return physics.Move(c, in)
}
