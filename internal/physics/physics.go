// Package physics computes a convoy's dynamics from a force balance between
// tractive effort and the resistances acting on it: aerodynamic drag
// (cf·v²), rolling resistance and slope force.
//
// All formulas run on numeric.Float so that every client of a synchronised
// game computes bit-identical results. Units differ between functions and are
// stated on each one; speeds are km/h where they are int32 and m/s where they
// are numeric.Float.
package physics

import (
	"math"

	"github.com/cxd309/traction-engine/internal/numeric"
	"github.com/cxd309/traction-engine/internal/vehicle"
)

// Convoy is what the formulas need to know about a convoy.
type Convoy interface {
	VehicleSummary() VehicleSummary
	AdverseSummary() AdverseSummary

	// StartingForce is the maximum static tractive force, N.
	StartingForce() numeric.Float
	// ContinuousPower is the power at the convoy's top speed, W.
	ContinuousPower() numeric.Float
	// TractiveForce is the force available at v (m/s), N.
	TractiveForce(v numeric.Float) numeric.Float
	// BrakingForce is the brake force available at v (m/s), N.
	BrakingForce(v numeric.Float) numeric.Float
}

var (
	// G is the gravitational acceleration, m/s².
	G = numeric.Ratio(981, 100)

	thirtySix     = numeric.FromInt(36)
	kmhPerMs      = numeric.Ratio(36, 10)
	weightMargin  = numeric.Ratio(101, 100)
	brakingMargin = numeric.Ratio(11, 10)
	thousand      = numeric.FromInt(1000)

	// Unstoppable is the braking distance reported when the brakes cannot
	// overcome the slope.
	Unstoppable = numeric.FromInt(math.MaxInt32)
)

// KmhToMs converts km/h to m/s.
func KmhToMs(kmh int32) numeric.Float {
	return numeric.FromInt(int64(kmh) * 10).Div(thirtySix)
}

// MsToKmh converts m/s to km/h.
func MsToKmh(v numeric.Float) numeric.Float {
	return v.Mul(kmhPerMs)
}

// StaticResistance returns Frs, the rolling and slope resistance in N.
func StaticResistance(adv AdverseSummary, w WeightSummary) numeric.Float {
	return G.Mul(adv.FR.Mul(w.WeightCos).Add(w.WeightSin))
}

// SpeedHoldingForce returns the force in N that keeps the convoy at v (m/s)
// against drag and frs, limited by what the engines deliver at v.
func SpeedHoldingForce(c Convoy, v, frs numeric.Float) numeric.Float {
	drag := c.AdverseSummary().CF.Mul(v).Mul(v)
	return numeric.Min(c.TractiveForce(v), drag.Add(frs))
}

// MaxSpeed returns the top speed in km/h the convoy reaches with weight w.
//
// At top speed the continuous power P balances the resistances:
// P/v = Frs + cf·v². The cubic cf·v³ + Frs·v − P = 0 is solved in closed
// form. The result gets 1 km/h on top to cover the integration error of Move.
func MaxSpeed(c Convoy, w WeightSummary) int32 {
	adv := c.AdverseSummary()
	top := c.VehicleSummary().MaxSpeed
	frs := StaticResistance(adv, w)
	if frs.Greater(c.StartingForce()) {
		// too heavy to start
		return 0
	}
	power := c.ContinuousPower()

	var v numeric.Float
	switch {
	case !adv.CF.IsZero():
		v = solveTopSpeed(adv.CF, frs, power)
	case frs.Sign() > 0:
		v = power.Div(frs)
	default:
		return top
	}
	kmh := MsToKmh(v).Int32()
	if kmh < math.MaxInt32 {
		kmh++
	}
	return min(top, kmh)
}

// solveTopSpeed returns the positive root of v³ + 3p·v − 2q = 0 with
// p = Frs/(3cf) and q = P/(2cf).
func solveTopSpeed(cf, frs, power numeric.Float) numeric.Float {
	p := frs.Div(numeric.Three.Mul(cf))
	q := power.Div(numeric.Two.Mul(cf))
	disc := q.Mul(q).Add(p.Pow(3))
	var v numeric.Float
	if disc.Sign() >= 0 {
		sd := disc.Sqrt()
		v = q.Add(sd).Cbrt().Add(q.Sub(sd).Cbrt())
	} else {
		// Three real roots, only possible downhill (p < 0). The largest
		// lies below 2·sqrt(-p); Newton converges to it from there.
		v = numeric.Two.Mul(p.Neg().Sqrt())
	}
	return polishRoot(v, p, q)
}

// polishRoot runs Newton steps on v³ + 3p·v − 2q. Cardano's form cancels
// two nearly equal cube roots for heavy, weak convoys.
func polishRoot(v, p, q numeric.Float) numeric.Float {
	for range 32 {
		fv := v.Pow(3).Add(numeric.Three.Mul(p).Mul(v)).Sub(numeric.Two.Mul(q))
		dfv := numeric.Three.Mul(v.Mul(v).Add(p))
		if dfv.Sign() <= 0 {
			break
		}
		next := v.Sub(fv.Div(dfv))
		if next.Equal(v) {
			break
		}
		v = next
	}
	return numeric.Max(v, numeric.Zero)
}

// MaxWeight returns the heaviest total weight in kg the convoy can keep at
// its top speed on a slope of slopePermille, with a 1% margin.
func MaxWeight(c Convoy, slopePermille int16) uint32 {
	top := c.VehicleSummary().MaxSpeed
	if top <= 0 {
		return 0
	}
	adv := c.AdverseSummary()
	v := KmhToMs(top)
	f := c.ContinuousPower().Div(v).Sub(adv.CF.Mul(v).Mul(v))
	if f.Sign() <= 0 {
		return 0
	}
	return liftableWeight(numeric.Min(f, c.StartingForce()), adv.FR, slopePermille)
}

// MaxStartingWeight returns the heaviest total weight in kg the starting
// force alone can move on a slope of slopePermille, with a 1% margin.
func MaxStartingWeight(c Convoy, slopePermille int16) uint32 {
	return liftableWeight(c.StartingForce(), c.AdverseSummary().FR, slopePermille)
}

// liftableWeight divides force by the resistance per kg. Downhill slopes
// count like uphill ones: the convoy has to hold the weight back as well.
func liftableWeight(force, fr numeric.Float, slopePermille int16) uint32 {
	if force.Sign() <= 0 {
		return 0
	}
	slope := numeric.Ratio(abs(int64(slopePermille)), 1000)
	perKg := G.Mul(fr.Add(slope)).Mul(weightMargin)
	if perKg.IsZero() {
		return math.MaxUint32
	}
	return uint32(min(force.Div(perKg).Int64(), math.MaxUint32))
}

// MinBrakingDistance returns the distance in m needed to stop from v (m/s):
// x = ½·v²·m / (Fb + Frs).
//
// Drag is ignored. It would shorten the distance, so the estimate errs on the
// long side.
func MinBrakingDistance(c Convoy, w WeightSummary, v numeric.Float) numeric.Float {
	if v.Sign() <= 0 {
		return numeric.Zero
	}
	f := c.BrakingForce(v).Add(StaticResistance(c.AdverseSummary(), w))
	if f.Sign() <= 0 {
		return Unstoppable
	}
	return numeric.Half.Mul(v).Mul(v).Mul(w.Weight).Div(f)
}

// MinBrakingSteps returns the braking distance from speedKmh in vehicle
// steps, inflated by 10%.
func MinBrakingSteps(c Convoy, s Settings, w WeightSummary, speedKmh int32) int32 {
	x := MinBrakingDistance(c, w, KmhToMs(speedKmh))
	return x.Mul(brakingMargin).Div(s.MetersPerStep()).Int32()
}

// PowerIndexToPower converts a summed force or power index (kN·gear or
// kW·gear) into kN or kW, applying the global power factor in percent.
func PowerIndexToPower(index int64, factorPercent int32) int32 {
	if index <= 0 || factorPercent <= 0 {
		return 0
	}
	const divisor = vehicle.GearFactor * 100
	f := int64(factorPercent)
	var p int64
	if index > math.MaxInt32/f {
		p = index / divisor * f
	} else {
		p = index * f / divisor
	}
	return int32(min(p, math.MaxInt32))
}

func abs(i int64) int64 {
	if i < 0 {
		return -i
	}
	return i
}
