// Package service defines the services run by the simulation and the
// SimService state machine that drives a live convoy along the line.
package service

import (
	"errors"
	"fmt"

	"github.com/cxd309/traction-engine/internal/convoy"
	"github.com/cxd309/traction-engine/internal/numeric"
	"github.com/cxd309/traction-engine/internal/physics"
	"github.com/cxd309/traction-engine/internal/track"
	"github.com/cxd309/traction-engine/internal/vehicle"
)

// ServiceID is a unique string identifier for a service.
type ServiceID = string

// ServiceState describes the current motion state of a service.
type ServiceState string

const (
	StateStationary   ServiceState = "stationary"
	StateAccelerating ServiceState = "accelerating"
	StateCruising     ServiceState = "cruising"
	StateBraking      ServiceState = "braking"
	StateArrived      ServiceState = "arrived"
)

var ErrNoVehicles = errors.New("service has no vehicles")

// Service is the static definition of a service.
type Service struct {
	ServiceID ServiceID      `json:"service_id"`
	Vehicles  []vehicle.Desc `json:"vehicles"` // front to back
	// InitialPosition is where the front of the convoy stands at the start,
	// in metres from the start of the line.
	InitialPosition uint32 `json:"initial_position"`
	// LoadPercent fills every vehicle to this share of its capacity.
	LoadPercent uint8 `json:"load_percent,omitempty"`
	// DepartureDelay is the number of simulation-seconds the service waits
	// stationary before beginning to move. Zero = immediate.
	DepartureDelay float64 `json:"departure_delay,omitempty"` // seconds
}

// SimService is a Service enriched with live simulation state.
type SimService struct {
	Service
	Convoy *convoy.ExistingConvoy
	Front  numeric.Float // metres from the start of the line
	Speed  numeric.Float // m/s
	State  ServiceState

	length numeric.Float // metres
}

// NewSimService creates a SimService with its convoy loaded and standing at
// the initial position.
func NewSimService(svc Service, goods vehicle.Goods, settings physics.Settings) (*SimService, error) {
	if len(svc.Vehicles) == 0 {
		return nil, fmt.Errorf("service %q: %w", svc.ServiceID, ErrNoVehicles)
	}
	vs := make([]*vehicle.Vehicle, len(svc.Vehicles))
	for i := range svc.Vehicles {
		d := &svc.Vehicles[i]
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("service %q vehicle %d: %w", svc.ServiceID, i, err)
		}
		vs[i] = vehicle.NewVehicle(d)
		vs[i].Load(goods, svc.LoadPercent)
	}
	c := convoy.NewExistingConvoy(vs, goods, settings)
	return &SimService{
		Service: svc,
		Convoy:  c,
		Front:   numeric.FromInt(int64(svc.InitialPosition)),
		State:   StateStationary,
		length:  settings.CarUnitsToMeters(c.VehicleSummary().Length),
	}, nil
}

// Length returns the length of the convoy in metres.
func (s *SimService) Length() numeric.Float { return s.length }

// Tail returns the position of the back of the convoy.
func (s *SimService) Tail() numeric.Float { return s.Front.Sub(s.length) }

// SpeedKmh returns the current speed in km/h, truncated.
func (s *SimService) SpeedKmh() int32 { return physics.MsToKmh(s.Speed).Int32() }

// PlaceVehicles sets every vehicle's slope and way speed limit from the
// section under its front and invalidates the convoy summaries.
func (s *SimService) PlaceVehicles(t *track.Track) {
	settings := s.Convoy.Settings()
	x := s.Front
	for _, v := range s.Convoy.Vehicles() {
		sec := t.SectionAt(x)
		v.Slope = sec.Slope
		v.WaySpeedLimit = sec.SpeedLimit
		x = x.Sub(settings.CarUnitsToMeters(uint32(v.Desc.Length)))
	}
	s.Convoy.Invalidate()
}

// BrakingDistance returns the minimum stopping distance from the current
// speed, in metres.
func (s *SimService) BrakingDistance() numeric.Float {
	return s.Convoy.CalcMinBrakingDistance(s.Convoy.WeightSummary(), s.Speed)
}

// Departed reports whether the departure delay has elapsed at now (seconds).
func (s *SimService) Departed(now float64) bool {
	return now >= s.DepartureDelay
}

// Advance applies the result of one move: the new speed and the distance
// travelled. The state follows the change in speed.
func (s *SimService) Advance(speed, distance numeric.Float) {
	prev := s.Speed
	s.Speed = speed
	s.Front = s.Front.Add(distance)
	switch {
	case speed.IsZero():
		s.State = StateStationary
	case speed.Greater(prev):
		s.State = StateAccelerating
	case speed.Less(prev):
		s.State = StateBraking
	default:
		s.State = StateCruising
	}
}

// Arrive stops the service with its front at end.
func (s *SimService) Arrive(end numeric.Float) {
	s.Front = end
	s.Speed = numeric.Zero
	s.State = StateArrived
}

// Arrived reports whether the service has reached the end of the line.
func (s *SimService) Arrived() bool { return s.State == StateArrived }

// ServiceLog is a point-in-time snapshot of a SimService's state.
type ServiceLog struct {
	ServiceID       ServiceID      `json:"service_id"`
	CurrentPosition track.Position `json:"current_position"`
	Front           numeric.Float  `json:"front"`    // metres
	Velocity        numeric.Float  `json:"velocity"` // m/s
	SpeedKmh        int32          `json:"speed_kmh"`
	State           ServiceState   `json:"state"`
}

// GetLog returns a point-in-time snapshot of the service state.
func (s *SimService) GetLog(t *track.Track) ServiceLog {
	return ServiceLog{
		ServiceID:       s.ServiceID,
		CurrentPosition: t.Locate(s.Front),
		Front:           s.Front,
		Velocity:        s.Speed,
		SpeedKmh:        s.SpeedKmh(),
		State:           s.State,
	}
}
