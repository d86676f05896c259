package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cxd309/traction-engine/internal/numeric"
)

func moveInput(kg uint32, speedKmh, targetKmh int32) MoveInput {
	return MoveInput{
		DeltaT:         2000,
		SimtimeFactor:  numeric.One,
		Weight:         NewWeightSummary(kg, 0),
		Speed:          KmhToMs(speedKmh),
		TargetSpeed:    targetKmh,
		NextSpeedLimit: targetKmh,
		StepsTilLimit:  100000,
		StepsTilBrake:  100000,
		MetersPerStep:  DefaultSettings().MetersPerStep(),
	}
}

func TestMoveSteadyState(t *testing.T) {
	c := locomotive()
	in := moveInput(500000, 80, 80)
	in.StepsTilLimit, in.StepsTilBrake = 0, 0

	res := Move(c, in)
	assert.InDelta(t, in.Speed.Float64(), res.Speed.Float64(), 1e-6)
	assert.InDelta(t, in.Speed.Float64()*2, res.Distance.Float64(), 1e-5)
}

func TestMoveAccelerates(t *testing.T) {
	c := locomotive()
	in := moveInput(500000, 0, 100)
	in.DeltaT = 10000

	res := Move(c, in)
	// (300 kN - Frs) / 500 t for 10 s, minus a little drag
	assert.InDelta(t, 5.84, res.Speed.Float64(), 0.05)
	assert.True(t, res.Distance.Sign() > 0)
	assert.True(t, res.Speed.LessEq(KmhToMs(100)))
}

func TestMoveBrakes(t *testing.T) {
	t.Run("towards target", func(t *testing.T) {
		c := locomotive()
		in := moveInput(500000, 120, 50)

		res := Move(c, in)
		v0 := KmhToMs(120).Float64()
		frs := StaticResistance(c.adv, in.Weight).Float64()
		a := (-400000 - 5*v0*v0 - frs) / 500000
		assert.InDelta(t, v0+2*a, res.Speed.Float64(), 0.01)
	})

	t.Run("never below target", func(t *testing.T) {
		c := locomotive()
		in := moveInput(500000, 12, 10)

		res := Move(c, in)
		assert.Equal(t, KmhToMs(10), res.Speed)
	})

	t.Run("crawls until the restriction", func(t *testing.T) {
		c := locomotive()
		in := moveInput(500000, 20, 60)
		in.NextSpeedLimit, in.StepsTilLimit, in.StepsTilBrake = 0, 10000, 0
		in.DeltaT = 20000

		res := Move(c, in)
		assert.Equal(t, VMin, res.Speed)
	})

	t.Run("stops at the restriction", func(t *testing.T) {
		c := locomotive()
		in := moveInput(500000, 20, 60)
		in.NextSpeedLimit, in.StepsTilLimit, in.StepsTilBrake = 0, 0, 0
		in.DeltaT = 20000

		res := Move(c, in)
		assert.True(t, res.Speed.IsZero(), "speed %v", res.Speed)
	})
}

func TestMoveLongWait(t *testing.T) {
	c := locomotive()
	in := moveInput(500000, 0, 100)
	in.DeltaT = 31 * 60 * 1000

	res := Move(c, in)
	want := numeric.Min(KmhToMs(100), KmhToMs(MaxSpeed(c, in.Weight)))
	assert.Equal(t, want, res.Speed)
	assert.InDelta(t, want.Float64()*31*60, res.Distance.Float64(), 1e-3)
}

func TestMoveThrottleDamping(t *testing.T) {
	aircraft := func(force int64) *fakeConvoy {
		return &fakeConvoy{
			veh:   VehicleSummary{Weight: 1000000, MaxSpeed: 900},
			adv:   AdverseSummary{CF: numeric.One, FR: numeric.Ratio(1, 1000), BR: numeric.Two, MaxSpeed: 900},
			force: numeric.FromInt(force),
			power: numeric.FromInt(100000000),
			brake: numeric.FromInt(2000000),
		}
	}
	run := func(c *fakeConvoy, target int32) numeric.Float {
		in := moveInput(1000000, 0, target)
		in.DeltaT = 1000
		return Move(c, in).Speed
	}

	strong := aircraft(2000000)
	assert.True(t, run(strong, 50).Less(run(strong, 200)), "taxiing below a tenth of top speed is damped")

	weak := aircraft(900000)
	assert.Equal(t, run(weak, 200), run(weak, 50), "forces below the threshold are not damped")
}

func TestThrottleThresholds(t *testing.T) {
	c := &fakeConvoy{
		veh:   VehicleSummary{Weight: 1000000, MaxSpeed: 900},
		adv:   AdverseSummary{CF: numeric.One, FR: numeric.Ratio(1, 1000), MaxSpeed: 900},
		force: numeric.FromInt(5000000),
		power: numeric.FromInt(100000000),
	}
	dampBelow := KmhToMs(900).Mul(tenPercent) // 25 m/s
	frs := numeric.FromInt(1000)
	target := numeric.FromInt(20)

	tests := []struct {
		name   string
		v      numeric.Float
		target numeric.Float
		force  int64
		damped bool
	}{
		{"well below everything", numeric.Zero, target, 2000000, true},
		{"just under 90% of target", numeric.Ratio(1799, 100), target, 2000000, true},
		{"at 90% of target", numeric.FromInt(18), target, 2000000, false},
		{"just over 90% of target", numeric.Ratio(1801, 100), target, 2000000, false},
		{"target just under a tenth of top speed", numeric.Zero, numeric.Ratio(2499, 100), 2000000, true},
		{"target at a tenth of top speed", numeric.Zero, numeric.FromInt(25), 2000000, false},
		{"target just over a tenth of top speed", numeric.Zero, numeric.Ratio(2501, 100), 2000000, false},
		{"force just over 1 MN", numeric.Zero, target, 1000001, true},
		{"force at 1 MN", numeric.Zero, target, 1000000, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := numeric.FromInt(tt.force)
			got := throttle(c, tt.v, tt.target, dampBelow, f, frs)
			if !tt.damped {
				assert.Equal(t, f, got)
				return
			}
			hold := SpeedHoldingForce(c, tt.target, frs)
			assert.True(t, got.Less(f))
			assert.InDelta(t, hold.Float64()+(f.Float64()-hold.Float64())/10, got.Float64(), 1)
		})
	}
}

func TestMoveNeverExceedsLimits(t *testing.T) {
	c := locomotive()
	c.adv.MaxSpeed = 100
	vMax := KmhToMs(100)

	for _, speed := range []int32{0, 50, 120, 200} {
		for _, target := range []int32{0, 30, 80, 160, 300} {
			for _, limit := range []int32{0, 50, 200} {
				for _, steps := range []int32{0, 100, 10000} {
					for _, brake := range []int32{-10, 0, 5000} {
						for _, dt := range []int64{100, 2000, 60000, 31 * 60 * 1000} {
							in := moveInput(500000, speed, target)
							in.NextSpeedLimit, in.StepsTilLimit, in.StepsTilBrake, in.DeltaT = limit, steps, brake, dt
							res := Move(c, in)
							require.True(t, res.Speed.LessEq(vMax), "%+v -> %v", in, res.Speed)
							require.True(t, res.Speed.Sign() >= 0, "%+v -> %v", in, res.Speed)
							require.True(t, res.Distance.Sign() >= 0, "%+v -> %v", in, res.Distance)
						}
					}
				}
			}
		}
	}
}

func TestMoveEdgeCases(t *testing.T) {
	c := locomotive()

	t.Run("no time", func(t *testing.T) {
		in := moveInput(500000, 40, 80)
		in.DeltaT = 0
		res := Move(c, in)
		assert.Equal(t, in.Speed, res.Speed)
		assert.True(t, res.Distance.IsZero())
	})

	t.Run("weightless", func(t *testing.T) {
		in := moveInput(0, 0, 100)
		res := Move(c, in)
		assert.True(t, res.Speed.LessEq(KmhToMs(100)))
		assert.True(t, res.Speed.Sign() > 0)
	})

	t.Run("deterministic", func(t *testing.T) {
		in := moveInput(750000, 33, 120)
		in.DeltaT = 45000
		assert.Equal(t, Move(c, in), Move(c, in))
	})
}
