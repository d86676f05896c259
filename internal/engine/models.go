package engine

import (
	"github.com/cxd309/traction-engine/internal/numeric"
	"github.com/cxd309/traction-engine/internal/physics"
	"github.com/cxd309/traction-engine/internal/service"
	"github.com/cxd309/traction-engine/internal/track"
	"github.com/cxd309/traction-engine/internal/vehicle"
)

// SimulationMeta holds the identity and timing parameters for a simulation run.
type SimulationMeta struct {
	SimulationID string  `json:"simulation_id"` // generated when empty
	RunTime      float64 `json:"run_time"`      // seconds
	TimeStep     float64 `json:"time_step"`     // seconds
}

// SimulationInput is the JSON-serialisable input to the engine.
// Zero fields in Settings take the engine's configured defaults.
type SimulationInput struct {
	Meta        SimulationMeta     `json:"simulation_meta"`
	Settings    physics.Settings   `json:"settings"`
	Goods       vehicle.GoodsTable `json:"goods,omitempty"`
	Track       track.TrackData    `json:"track"`
	ServiceList []service.Service  `json:"service_list"`
}

// SimulationLogRow is the state of all services at a single simulation timestep.
type SimulationLogRow struct {
	Timestamp   float64              `json:"timestamp"` // seconds
	ServiceLogs []service.ServiceLog `json:"service_logs"`
}

// SimulationLog is the complete output of a simulation run.
type SimulationLog struct {
	Meta     SimulationMeta     `json:"simulation_meta"`
	Settings physics.Settings   `json:"settings"`
	Output   []SimulationLogRow `json:"output"`
}

// MetricsInput describes a convoy that exists only on paper.
type MetricsInput struct {
	Settings physics.Settings   `json:"settings"`
	Goods    vehicle.GoodsTable `json:"goods,omitempty"`
	Vehicles []vehicle.Desc     `json:"vehicles"`
	Slope    int16              `json:"slope,omitempty"` // ‰, for the weight limits
}

// ConvoyMetrics is the planning preview of a potential convoy.
type ConvoyMetrics struct {
	Length           uint32        `json:"length"` // car units
	Tiles            uint32        `json:"tiles"`
	TopSpeed         int32         `json:"top_speed"` // km/h, slowest vehicle
	Weight           uint32        `json:"weight"`    // kg, empty
	MinFreightWeight uint32        `json:"min_freight_weight"`
	MaxFreightWeight uint32        `json:"max_freight_weight"`
	StartingForce    numeric.Float `json:"starting_force"`   // N
	ContinuousPower  numeric.Float `json:"continuous_power"` // W

	MaxSpeedEmpty     int32         `json:"max_speed_empty"`  // km/h
	MaxSpeedLoaded    int32         `json:"max_speed_loaded"` // km/h
	MaxWeight         uint32        `json:"max_weight"`       // kg
	MaxStartingWeight uint32        `json:"max_starting_weight"`
	BrakingDistance   numeric.Float `json:"braking_distance"` // m, empty from top speed
	BrakingSteps      int32         `json:"braking_steps"`
}

// restriction is a point ahead a service must pass no faster than limit.
type restriction struct {
	stepsTilLimit int32
	stepsTilBrake int32
	limit         int32 // km/h
}

// snapshot is the state of a service at the start of a step, shared by all
// services in the motion pass.
type snapshot struct {
	front numeric.Float
	zone  numeric.Float // start of the protected zone behind the convoy
	speed numeric.Float
}
