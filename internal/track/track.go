// Package track provides the linear line the simulated convoys run on: an
// ordered list of sections, each with its own length, speed limit and slope.
package track

import (
	"errors"
	"fmt"
	"sort"

	"github.com/cxd309/traction-engine/internal/numeric"
)

// SectionID is a unique string identifier for a section.
type SectionID = string

var (
	ErrEmptyTrack       = errors.New("track has no sections")
	ErrDuplicateSection = errors.New("duplicate section")
	ErrInvalidSection   = errors.New("invalid section")
)

// Section is one stretch of line with uniform properties.
// SpeedLimit is optional: 0 imposes no limit and the vehicles' own top speed
// applies.
type Section struct {
	ID         SectionID `json:"section_id"`
	Length     uint32    `json:"length"`                // metres
	SpeedLimit int32     `json:"speed_limit,omitempty"` // km/h; 0 = no restriction
	Slope      int16     `json:"slope,omitempty"`       // sine of the incline, ‰, positive uphill
}

// TrackData is the serialisable input representation of a line.
type TrackData struct {
	Sections []Section `json:"sections"`
}

// Position is a point along the line.
type Position struct {
	Section SectionID     `json:"section"`
	Offset  numeric.Float `json:"offset"` // metres into the section
}

// Restriction is a point ahead where the permitted speed drops.
type Restriction struct {
	Distance   numeric.Float // metres ahead
	SpeedLimit int32         // km/h; 0 = stop
}

// Track is a validated line. Sections are laid end to end starting at 0 m.
type Track struct {
	sections []Section
	ends     []numeric.Float // ends[i] is the distance from the start to the end of section i
	byID     map[SectionID]int
}

// NewTrack builds a Track from TrackData, returning an error if any section is
// invalid.
func NewTrack(data TrackData) (*Track, error) {
	if len(data.Sections) == 0 {
		return nil, ErrEmptyTrack
	}
	t := &Track{byID: make(map[SectionID]int, len(data.Sections))}
	var end uint64
	for _, s := range data.Sections {
		if err := t.addSection(s); err != nil {
			return nil, err
		}
		end += uint64(s.Length)
		t.ends = append(t.ends, numeric.FromInt(int64(end)))
	}
	return t, nil
}

func (t *Track) addSection(s Section) error {
	switch {
	case s.ID == "":
		return fmt.Errorf("%w: missing section_id", ErrInvalidSection)
	case s.Length == 0:
		return fmt.Errorf("%w: %q has zero length", ErrInvalidSection, s.ID)
	case s.SpeedLimit < 0:
		return fmt.Errorf("%w: %q has a negative speed limit", ErrInvalidSection, s.ID)
	case s.Slope > 1000 || s.Slope < -1000:
		return fmt.Errorf("%w: %q slope %d‰ out of range", ErrInvalidSection, s.ID, s.Slope)
	}
	if _, exists := t.byID[s.ID]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateSection, s.ID)
	}
	t.byID[s.ID] = len(t.sections)
	t.sections = append(t.sections, s)
	return nil
}

// Length returns the length of the whole line in metres.
func (t *Track) Length() numeric.Float { return t.ends[len(t.ends)-1] }

// Sections returns the sections in order.
func (t *Track) Sections() []Section { return t.sections }

// GetSection looks up a section by its ID.
func (t *Track) GetSection(id SectionID) (Section, error) {
	i, ok := t.byID[id]
	if !ok {
		return Section{}, fmt.Errorf("section %q not found", id)
	}
	return t.sections[i], nil
}

// index returns the section containing x. A section owns its start but not its
// end; positions outside the line clamp to the first or last section.
func (t *Track) index(x numeric.Float) int {
	i := sort.Search(len(t.ends), func(i int) bool { return t.ends[i].Greater(x) })
	return min(i, len(t.ends)-1)
}

func (t *Track) start(i int) numeric.Float {
	if i == 0 {
		return numeric.Zero
	}
	return t.ends[i-1]
}

// SectionAt returns the section under the point x metres from the start.
func (t *Track) SectionAt(x numeric.Float) Section {
	return t.sections[t.index(x)]
}

// Locate converts a distance from the start into a Position.
func (t *Track) Locate(x numeric.Float) Position {
	i := t.index(x)
	off := numeric.Min(numeric.Max(x.Sub(t.start(i)), numeric.Zero), numeric.FromInt(int64(t.sections[i].Length)))
	return Position{Section: t.sections[i].ID, Offset: off}
}

// Restrictions lists, nearest first, every point within lookahead metres
// ahead of x where the speed limit drops below currentLimit (km/h, 0 means
// unlimited). The end of the line is a restriction to 0 km/h.
func (t *Track) Restrictions(x, lookahead numeric.Float, currentLimit int32) []Restriction {
	var out []Restriction
	horizon := x.Add(lookahead)
	limit := currentLimit
	for i := t.index(x) + 1; i < len(t.sections); i++ {
		s := t.start(i)
		if s.Greater(horizon) {
			return out
		}
		if l := t.sections[i].SpeedLimit; l > 0 && (limit == 0 || l < limit) {
			out = append(out, Restriction{Distance: s.Sub(x), SpeedLimit: l})
			limit = l
		}
	}
	if end := t.Length(); end.LessEq(horizon) {
		out = append(out, Restriction{Distance: numeric.Max(end.Sub(x), numeric.Zero)})
	}
	return out
}

// NextRestriction returns the nearest restriction within lookahead metres
// ahead of x, if any.
func (t *Track) NextRestriction(x, lookahead numeric.Float, currentLimit int32) (Restriction, bool) {
	r := t.Restrictions(x, lookahead, currentLimit)
	if len(r) == 0 {
		return Restriction{}, false
	}
	return r[0], true
}
