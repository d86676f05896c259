package vehicle

// Vehicle is a live vehicle: a descriptor plus the state the movement code
// maintains for it.
type Vehicle struct {
	Desc *Desc

	Freight       uint32 // kg currently loaded
	Slope         int16  // sine of the incline under the vehicle, ‰, positive uphill
	WaySpeedLimit int32  // km/h of the way under the vehicle, 0 if none
	SpeedLimit    int32  // per-vehicle override in km/h, 0 if none
	Friction      int32  // current friction factor, 0 uses the waytype's
}

// NewVehicle returns an empty vehicle built from d.
func NewVehicle(d *Desc) *Vehicle {
	return &Vehicle{Desc: d}
}

// TotalWeight is the empty weight plus the current load, in kg.
func (v *Vehicle) TotalWeight() uint32 {
	return AddSaturated(v.Desc.Weight, v.Freight)
}

// FrictionFactor returns the friction currently acting on the vehicle.
func (v *Vehicle) FrictionFactor() int32 {
	if v.Friction != 0 {
		return v.Friction
	}
	return FrictionOf(v.Desc.Waytype)
}

// Load fills the vehicle to percent of its capacity using the heaviest goods
// of its category.
func (v *Vehicle) Load(goods Goods, percent uint8) {
	v.Freight = 0
	if v.Desc.Capacity == 0 || goods == nil {
		return
	}
	r, ok := goods.WeightRange(v.Desc.FreightCategory)
	if !ok {
		return
	}
	v.Freight = Saturate(uint64(v.Desc.Capacity) * uint64(r.Max) * uint64(min(percent, 100)) / 100)
}
