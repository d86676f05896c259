package physics

import "github.com/cxd309/traction-engine/internal/numeric"

const (
	// sliceSeconds is the integration step used while forces are large.
	sliceSeconds = 2
	// longWaitMillis is the time step above which Move jumps straight to the
	// steady state.
	longWaitMillis = 30 * 60 * 1000
)

var (
	// VMin is the crawl speed (m/s) below which a convoy braking for a
	// restriction is not slowed further before reaching it.
	VMin = KmhToMs(1)

	// Above this tractive force (N) a convoy accelerating towards a slow
	// target uses a tenth of its spare force. Aircraft idling to the runway
	// would otherwise shoot past their taxi speed.
	throttleDampingForce = numeric.FromInt(1000000)

	slice          = numeric.FromInt(sliceSeconds)
	millisPerSec   = numeric.FromInt(1000)
	ninetyPercent  = numeric.Ratio(9, 10)
	tenPercent     = numeric.Ratio(1, 10)
	hundredTenPerc = numeric.Ratio(11, 10)
)

// MoveInput is the state one Move call advances.
type MoveInput struct {
	DeltaT        int64         // simulated milliseconds
	SimtimeFactor numeric.Float // 0 means 1
	Weight        WeightSummary
	Speed         numeric.Float // current speed, m/s

	TargetSpeed    int32         // km/h wanted on the current way
	NextSpeedLimit int32         // km/h allowed at the next restriction
	StepsTilLimit  int32         // vehicle steps to the next restriction
	StepsTilBrake  int32         // vehicle steps until braking for it must start
	MetersPerStep  numeric.Float // length of a vehicle step, m
}

// MoveResult is the outcome of one Move call.
type MoveResult struct {
	Speed    numeric.Float // m/s
	Distance numeric.Float // m travelled
}

// Move advances the convoy's speed over in.DeltaT and returns the new speed
// together with the distance covered.
//
// Each 2 s slice applies one force regime chosen from the current speed v
// and the target speed:
//
//	v ≥ 110% target, or past the brake point  brake
//	target < v < 110% target                  coast
//	v = target                                hold the speed
//	v < target                                full tractive force
//
// When the acceleration is small enough for a single Euler step the
// remaining time is taken in one slice. The result never exceeds the lower
// of the vehicle and way limits.
func Move(c Convoy, in MoveInput) MoveResult {
	veh, adv := c.VehicleSummary(), c.AdverseSummary()
	vMax := KmhToMs(max(min(veh.MaxSpeed, adv.MaxSpeed), 0))
	vTarget := numeric.Min(KmhToMs(max(in.TargetSpeed, 0)), vMax)

	if in.DeltaT <= 0 {
		return MoveResult{Speed: numeric.Min(in.Speed, vMax)}
	}
	dtLeft := numeric.FromInt(in.DeltaT).Div(millisPerSec)
	if in.DeltaT > longWaitMillis {
		v := numeric.Min(vTarget, KmhToMs(MaxSpeed(c, in.Weight)))
		return MoveResult{Speed: v, Distance: v.Mul(dtLeft)}
	}

	simtime := in.SimtimeFactor
	if simtime.IsZero() {
		simtime = numeric.One
	}
	weight := numeric.Max(in.Weight.Weight, numeric.One)
	frs := StaticResistance(adv, in.Weight)
	vLimit := KmhToMs(max(in.NextSpeedLimit, 0))
	xTilLimit := numeric.FromInt(int64(in.StepsTilLimit)).Mul(in.MetersPerStep)
	xTilBrake := numeric.FromInt(int64(in.StepsTilBrake)).Mul(in.MetersPerStep)
	dampBelow := KmhToMs(veh.MaxSpeed).Mul(tenPercent)

	v := numeric.Max(in.Speed, numeric.Zero)
	dx := numeric.Zero
	for dtLeft.Sign() > 0 {
		target := vTarget
		if dx.GreaterEq(xTilLimit) {
			// past the restriction its limit applies
			target = numeric.Min(target, vLimit)
		}
		forLimit := v.Greater(vLimit) && dx.GreaterEq(xTilBrake)
		braking := forLimit || v.GreaterEq(target.Mul(hundredTenPerc))

		var f numeric.Float
		pulling := false
		switch {
		case braking:
			f = c.BrakingForce(v).Neg()
		case v.Greater(target):
			// coast
		case v.Equal(target):
			f = SpeedHoldingForce(c, v, frs)
			pulling = true
		default:
			f = throttle(c, v, target, dampBelow, c.TractiveForce(v), frs)
			pulling = true
		}

		drag := adv.CF.Mul(v).Mul(v)
		a := f.Sub(drag).Sub(frs).Mul(simtime).Div(weight)

		dt := slice
		if dtLeft.Less(slice) || a.Abs().Mul(dtLeft).LessEq(VMin) {
			dt = dtLeft
		}
		v = v.Add(a.Mul(dt))

		switch {
		case braking:
			// Never brake below the target. Short of the restriction keep
			// crawling at VMin so the convoy does not stall before it.
			floor := target
			if forLimit {
				floor = vLimit
				if dx.Less(xTilLimit) {
					floor = numeric.Max(floor, VMin)
				}
				floor = numeric.Min(floor, target)
			}
			v = numeric.Max(v, floor)
		case pulling:
			if a.Sign() > 0 && v.Less(VMin) {
				v = VMin
			}
			v = numeric.Min(v, target)
		}
		v = numeric.Min(numeric.Max(v, numeric.Zero), vMax)

		dx = dx.Add(v.Mul(dt))
		dtLeft = dtLeft.Sub(dt)
	}
	return MoveResult{Speed: v, Distance: dx}
}

// throttle returns the force a convoy at v applies towards target. Below 90%
// of a target slower than dampBelow, a force above throttleDampingForce is cut
// to the holding force plus a tenth of the rest.
func throttle(c Convoy, v, target, dampBelow, f, frs numeric.Float) numeric.Float {
	if v.Less(target.Mul(ninetyPercent)) && target.Less(dampBelow) && f.Greater(throttleDampingForce) {
		hold := SpeedHoldingForce(c, target, frs)
		return hold.Add(f.Sub(hold).Div(numeric.Ten))
	}
	return f
}
