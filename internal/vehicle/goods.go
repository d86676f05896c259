package vehicle

import "math"

// Goods looks up the per-unit weight range of a freight category. Goods in
// one category may weigh differently, so only bounds are known.
type Goods interface {
	WeightRange(category string) (WeightRange, bool)
}

// WeightRange is the per-unit weight of a freight category in kg.
type WeightRange struct {
	Min uint32 `json:"min"`
	Max uint32 `json:"max"`
}

// Of returns the weight bounds in kg of units of this category, saturating
// at math.MaxUint32.
func (r WeightRange) Of(units uint16) (lo, hi uint32) {
	return Saturate(uint64(units) * uint64(r.Min)), Saturate(uint64(units) * uint64(r.Max))
}

// Saturate narrows x to uint32, clamping at math.MaxUint32.
func Saturate(x uint64) uint32 {
	return uint32(min(x, math.MaxUint32))
}

// AddSaturated adds two weights in kg without wrapping.
func AddSaturated(a, b uint32) uint32 {
	return Saturate(uint64(a) + uint64(b))
}

// GoodsTable is a fixed category table.
type GoodsTable map[string]WeightRange

// WeightRange looks category up in the table.
func (t GoodsTable) WeightRange(category string) (WeightRange, bool) {
	r, ok := t[category]
	return r, ok
}

// DefaultGoods returns the stock freight categories.
func DefaultGoods() GoodsTable {
	return GoodsTable{
		"passengers":  {Min: 80, Max: 80},
		"mail":        {Min: 10, Max: 25},
		"piece_goods": {Min: 250, Max: 1000},
		"bulk":        {Min: 1000, Max: 1600},
		"liquid":      {Min: 800, Max: 1000},
		"cooled":      {Min: 400, Max: 800},
		"long_goods":  {Min: 1000, Max: 2000},
	}
}
