package engine

import (
	"encoding/json"
	"fmt"

	"github.com/cxd309/traction-engine/internal/convoy"
	"github.com/cxd309/traction-engine/internal/physics"
	"github.com/cxd309/traction-engine/internal/service"
	"github.com/cxd309/traction-engine/internal/vehicle"
)

// Metrics previews a convoy that has not been built: its top speed empty and
// fully loaded, the weight it can haul and start on in.Slope, and how far it
// needs to stop from top speed.
func Metrics(in MetricsInput, opts ...Option) (ConvoyMetrics, error) {
	o := buildOptions(opts)
	if len(in.Vehicles) == 0 {
		return ConvoyMetrics{}, fmt.Errorf("metrics: %w", service.ErrNoVehicles)
	}
	descs := make([]*vehicle.Desc, len(in.Vehicles))
	for i := range in.Vehicles {
		if err := in.Vehicles[i].Validate(); err != nil {
			return ConvoyMetrics{}, fmt.Errorf("metrics: vehicle %d: %w", i, err)
		}
		descs[i] = &in.Vehicles[i]
	}

	pc := convoy.NewPotentialConvoy(descs, o.goodsFor(in.Goods), mergeSettings(o.settings, in.Settings))
	veh, freight := pc.VehicleSummary(), pc.FreightSummary()
	empty, loaded := pc.PreviewWeight(false), pc.PreviewWeight(true)

	return ConvoyMetrics{
		Length:            veh.Length,
		Tiles:             veh.Tiles,
		TopSpeed:          veh.MaxSpeed,
		Weight:            veh.Weight,
		MinFreightWeight:  freight.MinFreightWeight,
		MaxFreightWeight:  freight.MaxFreightWeight,
		StartingForce:     pc.StartingForce(),
		ContinuousPower:   pc.ContinuousPower(),
		MaxSpeedEmpty:     pc.CalcMaxSpeed(empty),
		MaxSpeedLoaded:    pc.CalcMaxSpeed(loaded),
		MaxWeight:         pc.CalcMaxWeight(in.Slope),
		MaxStartingWeight: pc.CalcMaxStartingWeight(in.Slope),
		BrakingDistance:   pc.CalcMinBrakingDistance(empty, physics.KmhToMs(veh.MaxSpeed)),
		BrakingSteps:      pc.CalcMinBrakingSteps(empty, veh.MaxSpeed),
	}, nil
}

// MetricsJSON is the JSON wrapper around Metrics used by the CLI and WASM
// targets.
func MetricsJSON(jsonInput string, opts ...Option) (string, error) {
	var input MetricsInput
	if err := json.Unmarshal([]byte(jsonInput), &input); err != nil {
		return "", fmt.Errorf("invalid input JSON: %w", err)
	}
	m, err := Metrics(input, opts...)
	if err != nil {
		return "", err
	}
	out, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("marshaling output: %w", err)
	}
	return string(out), nil
}
