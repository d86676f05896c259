// Package engine implements the simulation loop that drives live convoys
// along a line.
//
// The simulation advances in fixed timesteps. Each step has two passes:
//
//  1. Safety pass - every service is placed on the track and computes its
//     protected zone: the track behind its tail a follower must not enter,
//     its own minimum braking distance long.
//
//  2. Motion pass - every service looks ahead for speed restrictions, the end
//     of the line and the protected zone of the service in front, picks the
//     one it must start braking for first and lets its convoy move for one
//     timestep. The movement is trimmed so no service enters another's zone.
package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/google/uuid"

	"github.com/cxd309/traction-engine/internal/numeric"
	"github.com/cxd309/traction-engine/internal/physics"
	"github.com/cxd309/traction-engine/internal/service"
	"github.com/cxd309/traction-engine/internal/track"
)

var ErrInvalidMeta = errors.New("invalid simulation meta")

var lookaheadMargin = numeric.Ratio(11, 10)

// TMS simulation engine state.
type TMS struct {
	meta     SimulationMeta
	settings physics.Settings
	track    *track.Track
	services []*service.SimService
	logger   *slog.Logger

	stepMillis int64
	runMillis  int64
	nowMillis  int64
}

// NewTMS constructs a TMS from a SimulationInput, building the track and
// placing each service at its initial position.
func NewTMS(input SimulationInput, opts ...Option) (*TMS, error) {
	o := buildOptions(opts)

	meta := input.Meta
	if meta.SimulationID == "" {
		meta.SimulationID = uuid.NewString()
	}
	if meta.TimeStep <= 0 || meta.RunTime < 0 {
		return nil, fmt.Errorf("%w: time_step must be positive and run_time not negative", ErrInvalidMeta)
	}

	tr, err := track.NewTrack(input.Track)
	if err != nil {
		return nil, fmt.Errorf("building track: %w", err)
	}

	settings := mergeSettings(o.settings, input.Settings)
	goods := o.goodsFor(input.Goods)
	seen := make(map[service.ServiceID]bool, len(input.ServiceList))
	services := make([]*service.SimService, 0, len(input.ServiceList))
	for _, svc := range input.ServiceList {
		if seen[svc.ServiceID] {
			return nil, fmt.Errorf("service %q already exists", svc.ServiceID)
		}
		seen[svc.ServiceID] = true
		if numeric.FromInt(int64(svc.InitialPosition)).Greater(tr.Length()) {
			return nil, fmt.Errorf("service %q initial position %d m is beyond the end of the line", svc.ServiceID, svc.InitialPosition)
		}
		simSvc, err := service.NewSimService(svc, goods, settings)
		if err != nil {
			return nil, fmt.Errorf("creating service %q: %w", svc.ServiceID, err)
		}
		simSvc.PlaceVehicles(tr)
		services = append(services, simSvc)
	}

	return &TMS{
		meta:       meta,
		settings:   settings,
		track:      tr,
		services:   services,
		logger:     o.logger.With("simulation_id", meta.SimulationID),
		stepMillis: max(int64(math.Round(meta.TimeStep*1000)), 1),
		runMillis:  int64(math.Round(meta.RunTime * 1000)),
	}, nil
}

// Meta returns the simulation meta with the generated ID filled in.
func (t *TMS) Meta() SimulationMeta { return t.meta }

// Run executes the full simulation and returns the log.
func (t *TMS) Run() SimulationLog {
	t.logger.Info("simulation started", "services", len(t.services), "run_time", t.meta.RunTime)
	log := SimulationLog{Meta: t.meta, Settings: t.settings}
	for t.nowMillis <= t.runMillis {
		log.Output = append(log.Output, t.step())
		t.nowMillis += t.stepMillis
	}
	t.logger.Info("simulation finished", "rows", len(log.Output))
	return log
}

func (t *TMS) now() float64 { return float64(t.nowMillis) / 1000 }

// step advances the simulation by one timestep and returns the resulting log row.
func (t *TMS) step() SimulationLogRow {
	// Pass 1: place every convoy and record its protected zone.
	snaps := make([]snapshot, len(t.services))
	for i, svc := range t.services {
		svc.PlaceVehicles(t.track)
		snaps[i] = snapshot{
			front: svc.Front,
			zone:  svc.Tail().Sub(svc.BrakingDistance()),
			speed: svc.Speed,
		}
	}

	// Pass 2: move every service that is under way.
	for i, svc := range t.services {
		if svc.Arrived() || !svc.Departed(t.now()) {
			continue
		}
		before := svc.State
		t.move(svc, t.leader(i, snaps))
		if svc.State != before {
			t.logger.Debug("service state changed",
				"service_id", svc.ServiceID, "t", t.now(),
				"from", before, "to", svc.State, "speed_kmh", svc.SpeedKmh())
		}
	}

	logs := make([]service.ServiceLog, len(t.services))
	for i, svc := range t.services {
		logs[i] = svc.GetLog(t.track)
	}
	return SimulationLogRow{Timestamp: t.now(), ServiceLogs: logs}
}

// leader returns the snapshot of the nearest service ahead of service i, or
// nil when the line ahead is clear.
func (t *TMS) leader(i int, snaps []snapshot) *snapshot {
	var ahead *snapshot
	for j := range snaps {
		if j == i || snaps[j].front.LessEq(snaps[i].front) {
			continue
		}
		if ahead == nil || snaps[j].front.Less(ahead.front) {
			ahead = &snaps[j]
		}
	}
	return ahead
}

// move lets svc's convoy run for one timestep.
func (t *TMS) move(svc *service.SimService, ahead *snapshot) {
	c := svc.Convoy
	w := c.WeightSummary()
	target := c.AdverseSummary().MaxSpeed

	r := t.mostUrgent(svc, ahead, target)
	res := c.CalcMove(physics.MoveInput{
		DeltaT:         t.stepMillis,
		Weight:         w,
		Speed:          svc.Speed,
		TargetSpeed:    target,
		NextSpeedLimit: r.limit,
		StepsTilLimit:  r.stepsTilLimit,
		StepsTilBrake:  r.stepsTilBrake,
	})

	speed, dist := res.Speed, res.Distance
	if ahead != nil {
		allowed := numeric.Max(ahead.zone.Sub(svc.Front), numeric.Zero)
		if dist.Greater(allowed) {
			dist = allowed
			speed = numeric.Min(speed, ahead.speed)
		}
	}

	// Within a vehicle step of the end counts as arrived; restrictions are
	// only resolved to whole steps.
	end := t.track.Length()
	if svc.Front.Add(dist).Add(t.settings.MetersPerStep()).Greater(end) {
		svc.Arrive(end)
		t.logger.Info("service arrived", "service_id", svc.ServiceID, "t", t.now())
		return
	}
	svc.Advance(speed, dist)
}

// mostUrgent returns the restriction ahead of svc whose brake point comes
// first: a lower track limit, the end of the line or the protected zone of
// the service in front.
func (t *TMS) mostUrgent(svc *service.SimService, ahead *snapshot, target int32) restriction {
	c := svc.Convoy
	w := c.WeightSummary()
	kmh := svc.SpeedKmh() + 1

	// Look as far as the convoy could need to stop from its top speed, plus
	// one step at that speed.
	top := c.VehicleSummary().MaxSpeed
	vTop := physics.KmhToMs(top)
	horizon := c.CalcMinBrakingDistance(w, vTop).Mul(lookaheadMargin).
		Add(vTop.Mul(numeric.FromInt(t.stepMillis)).Div(numeric.FromInt(1000)))

	candidates := t.track.Restrictions(svc.Front, horizon, target)
	if ahead != nil {
		gap := numeric.Max(ahead.zone.Sub(svc.Front), numeric.Zero)
		candidates = append(candidates, track.Restriction{Distance: gap})
	}

	best := restriction{stepsTilLimit: math.MaxInt32, stepsTilBrake: math.MaxInt32, limit: target}
	for _, cand := range candidates {
		limit := min(cand.SpeedLimit, target)
		stepsTilLimit := t.settings.MetersToSteps(cand.Distance)
		need := max(c.CalcMinBrakingSteps(w, kmh)-c.CalcMinBrakingSteps(w, limit), 0)
		stepsTilBrake := max(stepsTilLimit-need, 0)
		if stepsTilBrake < best.stepsTilBrake || (stepsTilBrake == best.stepsTilBrake && limit < best.limit) {
			best = restriction{stepsTilLimit: stepsTilLimit, stepsTilBrake: stepsTilBrake, limit: limit}
		}
	}
	return best
}

// RunJSON is the primary entry point for the CLI and WASM targets.
// It accepts a JSON-encoded SimulationInput, runs the simulation, and returns a
// JSON-encoded SimulationLog.
func RunJSON(jsonInput string, opts ...Option) (string, error) {
	var input SimulationInput
	if err := json.Unmarshal([]byte(jsonInput), &input); err != nil {
		return "", fmt.Errorf("invalid input JSON: %w", err)
	}

	tms, err := NewTMS(input, opts...)
	if err != nil {
		return "", err
	}

	out, err := json.Marshal(tms.Run())
	if err != nil {
		return "", fmt.Errorf("marshaling output: %w", err)
	}
	return string(out), nil
}
