package vehicle

import (
	"fmt"

	"github.com/cxd309/traction-engine/internal/numeric"
)

// Waytype is the kind of way a vehicle runs on.
type Waytype string

const (
	WaytypeRoad         Waytype = "road"
	WaytypeTrack        Waytype = "track"
	WaytypeNarrowGauge  Waytype = "narrow_gauge"
	WaytypeOverheadLine Waytype = "overhead_line"
	WaytypeTram         Waytype = "tram"
	WaytypeMonorail     Waytype = "monorail"
	WaytypeMaglev       Waytype = "maglev"
	WaytypeWater        Waytype = "water"
	WaytypeAir          Waytype = "air"
)

var waytypes = []Waytype{
	WaytypeRoad, WaytypeTrack, WaytypeNarrowGauge, WaytypeOverheadLine,
	WaytypeTram, WaytypeMonorail, WaytypeMaglev, WaytypeWater, WaytypeAir,
}

// ParseWaytype validates s as a waytype name.
func ParseWaytype(s string) (Waytype, error) {
	for _, wt := range waytypes {
		if string(wt) == s {
			return wt, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownWaytype, s)
}

// UnmarshalText implements encoding.TextUnmarshaler so unknown waytypes are
// rejected while decoding.
func (w *Waytype) UnmarshalText(b []byte) error {
	wt, err := ParseWaytype(string(b))
	if err != nil {
		return err
	}
	*w = wt
	return nil
}

// Coefficients below are fixed per waytype family.
var (
	cfTrack  = numeric.FromInt(5)
	cfMaglev = numeric.FromInt(4)
	cfRoad   = numeric.FromInt(4)
	cfWater  = numeric.FromInt(25)
	cfAir    = numeric.FromInt(1)

	frTrack  = numeric.Ratio(15, 10000)
	frMaglev = numeric.Ratio(5, 10000)
	frRoad   = numeric.Ratio(15, 1000)
	frWater  = numeric.Ratio(15, 1000)
	frAir    = numeric.Ratio(1, 1000)

	brAir    = numeric.FromInt(2)
	brWater  = numeric.Ratio(1, 10)
	brTrack  = numeric.Ratio(1, 2)
	brTram   = numeric.One
	brMaglev = numeric.Ratio(12, 10)
)

// BrakingCoefficient returns the typical service brake deceleration
// (m/s²) of vehicles on wt, used when a descriptor declares no brake force.
func BrakingCoefficient(wt Waytype) numeric.Float {
	switch wt {
	case WaytypeAir:
		return brAir
	case WaytypeWater:
		return brWater
	case WaytypeTrack, WaytypeNarrowGauge, WaytypeOverheadLine:
		return brTrack
	case WaytypeTram, WaytypeMonorail:
		return brTram
	case WaytypeMaglev:
		return brMaglev
	default:
		return numeric.One
	}
}

// DefaultAirResistance returns the drag coefficient cf (Ff = cf·v²).
func DefaultAirResistance(wt Waytype) numeric.Float {
	switch wt {
	case WaytypeTrack, WaytypeNarrowGauge, WaytypeOverheadLine, WaytypeTram, WaytypeMonorail:
		return cfTrack
	case WaytypeMaglev:
		return cfMaglev
	case WaytypeWater:
		return cfWater
	case WaytypeAir:
		return cfAir
	default:
		return cfRoad
	}
}

// DefaultRollingResistance returns the rolling resistance coefficient fr.
func DefaultRollingResistance(wt Waytype) numeric.Float {
	switch wt {
	case WaytypeTrack, WaytypeNarrowGauge, WaytypeOverheadLine, WaytypeTram, WaytypeMonorail:
		return frTrack
	case WaytypeMaglev:
		return frMaglev
	case WaytypeWater:
		return frWater
	case WaytypeAir:
		return frAir
	default:
		return frRoad
	}
}

// FrictionOf returns the base friction factor of a waytype.
func FrictionOf(wt Waytype) int32 {
	if wt == WaytypeRoad {
		return 4
	}
	return 1
}
