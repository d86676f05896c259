package vehicle

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWaytype(t *testing.T) {
	for _, wt := range waytypes {
		got, err := ParseWaytype(string(wt))
		require.NoError(t, err)
		assert.Equal(t, wt, got)
	}
	_, err := ParseWaytype("hovercraft")
	assert.ErrorIs(t, err, ErrUnknownWaytype)
}

func TestDescUnmarshal(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		var d Desc
		require.NoError(t, json.Unmarshal([]byte(`{"name":"wagon","waytype":"track","weight":20000,"top_speed":100}`), &d))
		assert.Equal(t, uint16(BrakeForceUnknown), d.BrakeForce)
		assert.Equal(t, uint16(GearFactor), d.Gear)
		assert.False(t, d.HasBrakeForce())
		assert.NoError(t, d.Validate())
	})

	t.Run("explicit values win", func(t *testing.T) {
		var d Desc
		require.NoError(t, json.Unmarshal([]byte(`{"name":"loco","waytype":"track","top_speed":120,"gear":80,"brake_force":200}`), &d))
		assert.Equal(t, uint16(80), d.Gear)
		assert.Equal(t, uint16(200), d.BrakeForce)
		assert.True(t, d.HasBrakeForce())
	})

	t.Run("unknown waytype", func(t *testing.T) {
		var d Desc
		err := json.Unmarshal([]byte(`{"name":"x","waytype":"hovercraft"}`), &d)
		assert.ErrorIs(t, err, ErrUnknownWaytype)
	})
}

func TestValidate(t *testing.T) {
	cases := map[string]Desc{
		"no name":       {Waytype: WaytypeTrack, TopSpeed: 100},
		"bad waytype":   {Name: "x", Waytype: "hovercraft", TopSpeed: 100},
		"no top speed":  {Name: "x", Waytype: WaytypeTrack},
		"empty waytype": {Name: "x", TopSpeed: 100},
	}
	for name, d := range cases {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, d.Validate(), ErrInvalidDesc)
		})
	}
}

func TestForceAndPowerIndex(t *testing.T) {
	d := &Desc{Name: "loco", Waytype: WaytypeTrack, TopSpeed: 120, Power: 1000, TractiveEffort: 100, Gear: GearFactor}

	// 1000 kW / 100 kN = 10 m/s
	assert.Equal(t, int64(10), d.ForceThresholdSpeed())
	assert.Equal(t, int64(100*GearFactor), d.EffectiveForceIndex(0))
	assert.Equal(t, int64(100*GearFactor), d.EffectiveForceIndex(10))
	assert.Equal(t, int64(1000*GearFactor/20), d.EffectiveForceIndex(20))

	assert.Equal(t, int64(0), d.EffectivePowerIndex(0))
	assert.Equal(t, int64(100*GearFactor*5), d.EffectivePowerIndex(5))
	assert.Equal(t, int64(1000*GearFactor), d.EffectivePowerIndex(30))

	t.Run("derived tractive effort", func(t *testing.T) {
		d := &Desc{Name: "railcar", Waytype: WaytypeTrack, TopSpeed: 36, Power: 500}
		// 500 kW at 10 m/s
		assert.Equal(t, int64(50*GearFactor), d.GearedForce())
		assert.Equal(t, int64(10), d.ForceThresholdSpeed())
	})

	t.Run("unpowered", func(t *testing.T) {
		d := &Desc{Name: "coach", Waytype: WaytypeTrack, TopSpeed: 160}
		assert.Zero(t, d.EffectiveForceIndex(0))
		assert.Zero(t, d.EffectivePowerIndex(20))
	})
}

func TestBrakingForce(t *testing.T) {
	declared := &Desc{BrakeForce: 150}
	assert.Equal(t, float64(150), declared.BrakingForceKN(BrakingCoefficient(WaytypeTrack), 80000).Float64())

	unknown := &Desc{BrakeForce: BrakeForceUnknown}
	assert.InDelta(t, 40, unknown.BrakingForceKN(BrakingCoefficient(WaytypeTrack), 80000).Float64(), 1e-6)
	assert.InDelta(t, 160, unknown.BrakingForceKN(BrakingCoefficient(WaytypeAir), 80000).Float64(), 1e-6)
}

func TestResistanceDefaults(t *testing.T) {
	d := &Desc{Waytype: WaytypeWater}
	assert.Equal(t, DefaultAirResistance(WaytypeWater), d.AirResistanceCoefficient())
	assert.Equal(t, DefaultRollingResistance(WaytypeWater), d.RollingResistanceCoefficient())

	d.AirResistance, d.RollingResistance = 250, 20
	assert.InDelta(t, 2.5, d.AirResistanceCoefficient().Float64(), 1e-9)
	assert.InDelta(t, 0.002, d.RollingResistanceCoefficient().Float64(), 1e-9)
}

func TestLoad(t *testing.T) {
	d := &Desc{Name: "hopper", Waytype: WaytypeTrack, Weight: 20000, TopSpeed: 100, Capacity: 50, FreightCategory: "bulk"}
	v := NewVehicle(d)

	v.Load(DefaultGoods(), 50)
	assert.Equal(t, uint32(40000), v.Freight)
	assert.Equal(t, uint32(60000), v.TotalWeight())

	v.Load(DefaultGoods(), 250)
	assert.Equal(t, uint32(80000), v.Freight, "capped at full")

	v.Load(GoodsTable{}, 100)
	assert.Zero(t, v.Freight)

	v.Load(nil, 100)
	assert.Zero(t, v.Freight)
}

func TestLoadSaturates(t *testing.T) {
	ore := GoodsTable{"ore": {Min: 100000, Max: 100000}}
	v := NewVehicle(&Desc{Name: "ore carrier", Waytype: WaytypeWater, Weight: 4000000000, Capacity: 65535, FreightCategory: "ore"})

	v.Load(ore, 100)
	assert.Equal(t, uint32(math.MaxUint32), v.Freight)
	assert.Equal(t, uint32(math.MaxUint32), v.TotalWeight())

	v.Load(ore, 50)
	assert.Equal(t, uint32(3276750000), v.Freight)
	assert.Equal(t, uint32(math.MaxUint32), v.TotalWeight())
}

func TestWeightRangeOf(t *testing.T) {
	lo, hi := WeightRange{Min: 10, Max: 100000}.Of(65535)
	assert.Equal(t, uint32(655350), lo)
	assert.Equal(t, uint32(math.MaxUint32), hi)
	assert.Equal(t, uint32(math.MaxUint32), AddSaturated(math.MaxUint32-1, 2))
	assert.Equal(t, uint32(7), AddSaturated(3, 4))
}

func TestFrictionFactor(t *testing.T) {
	v := NewVehicle(&Desc{Waytype: WaytypeRoad})
	assert.Equal(t, int32(4), v.FrictionFactor())
	v.Friction = 9
	assert.Equal(t, int32(9), v.FrictionFactor())
	assert.Equal(t, int32(1), NewVehicle(&Desc{Waytype: WaytypeMaglev}).FrictionFactor())
}
