package convoy

import (
	"github.com/cxd309/traction-engine/internal/numeric"
	"github.com/cxd309/traction-engine/internal/physics"
	"github.com/cxd309/traction-engine/internal/vehicle"
)

// Both adapters go through these helpers so that they add up the same
// numbers in the same order.

func forceSummary(n int, desc func(int) *vehicle.Desc, speed, powerFactor int32) int32 {
	var index int64
	for i := range n {
		index += desc(i).EffectiveForceIndex(speed)
	}
	return physics.PowerIndexToPower(index, powerFactor)
}

func powerSummary(n int, desc func(int) *vehicle.Desc, speed, powerFactor int32) int32 {
	var index int64
	for i := range n {
		index += desc(i).EffectivePowerIndex(speed)
	}
	return physics.PowerIndexToPower(index, powerFactor)
}

func brakeSummary(n int, desc func(int) *vehicle.Desc, weight func(int) uint32) numeric.Float {
	if n == 0 {
		return numeric.Zero
	}
	br := vehicle.BrakingCoefficient(desc(0).Waytype)
	total := numeric.Zero
	for i := range n {
		total = total.Add(desc(i).BrakingForceKN(br, weight(i)))
	}
	return total
}
