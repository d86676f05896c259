package track

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cxd309/traction-engine/internal/numeric"
)

func line(t *testing.T) *Track {
	t.Helper()
	tr, err := NewTrack(TrackData{Sections: []Section{
		{ID: "a", Length: 1000, SpeedLimit: 120},
		{ID: "b", Length: 500, SpeedLimit: 60, Slope: 10},
		{ID: "c", Length: 2000},
		{ID: "d", Length: 500, SpeedLimit: 40, Slope: -5},
	}})
	require.NoError(t, err)
	return tr
}

func m(x int64) numeric.Float { return numeric.FromInt(x) }

func TestNewTrackValidation(t *testing.T) {
	cases := []struct {
		name string
		data TrackData
		err  error
	}{
		{"empty", TrackData{}, ErrEmptyTrack},
		{"missing id", TrackData{Sections: []Section{{Length: 10}}}, ErrInvalidSection},
		{"zero length", TrackData{Sections: []Section{{ID: "a"}}}, ErrInvalidSection},
		{"negative limit", TrackData{Sections: []Section{{ID: "a", Length: 1, SpeedLimit: -1}}}, ErrInvalidSection},
		{"steep", TrackData{Sections: []Section{{ID: "a", Length: 1, Slope: 1001}}}, ErrInvalidSection},
		{"duplicate", TrackData{Sections: []Section{{ID: "a", Length: 1}, {ID: "a", Length: 1}}}, ErrDuplicateSection},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewTrack(tc.data)
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestLocate(t *testing.T) {
	tr := line(t)
	assert.Equal(t, m(4000), tr.Length())

	cases := []struct {
		x    int64
		want Position
	}{
		{0, Position{Section: "a", Offset: numeric.Zero}},
		{999, Position{Section: "a", Offset: m(999)}},
		{1000, Position{Section: "b", Offset: numeric.Zero}},
		{1700, Position{Section: "c", Offset: m(200)}},
		{4000, Position{Section: "d", Offset: m(500)}},
		{5000, Position{Section: "d", Offset: m(500)}},
		{-20, Position{Section: "a", Offset: numeric.Zero}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tr.Locate(m(tc.x)), "x=%d", tc.x)
	}
	assert.Equal(t, int16(10), tr.SectionAt(m(1200)).Slope)
	assert.Equal(t, int32(0), tr.SectionAt(m(2000)).SpeedLimit)
}

func TestGetSection(t *testing.T) {
	tr := line(t)
	s, err := tr.GetSection("c")
	require.NoError(t, err)
	assert.Equal(t, uint32(2000), s.Length)
	_, err = tr.GetSection("z")
	assert.Error(t, err)
	assert.Len(t, tr.Sections(), 4)
}

func TestRestrictions(t *testing.T) {
	tr := line(t)

	t.Run("nearest drop ahead", func(t *testing.T) {
		r, ok := tr.NextRestriction(m(200), m(5000), 120)
		require.True(t, ok)
		assert.Equal(t, Restriction{Distance: m(800), SpeedLimit: 60}, r)
	})

	t.Run("all drops in order", func(t *testing.T) {
		got := tr.Restrictions(m(200), m(5000), 120)
		assert.Equal(t, []Restriction{
			{Distance: m(800), SpeedLimit: 60},
			{Distance: m(3300), SpeedLimit: 40},
			{Distance: m(3800), SpeedLimit: 0},
		}, got)
	})

	t.Run("raised limits are not restrictions", func(t *testing.T) {
		got := tr.Restrictions(m(1100), m(1500), 60)
		assert.Empty(t, got)
	})

	t.Run("unlimited current section", func(t *testing.T) {
		r, ok := tr.NextRestriction(m(1600), m(2000), 0)
		require.True(t, ok)
		assert.Equal(t, Restriction{Distance: m(1900), SpeedLimit: 40}, r)
	})

	t.Run("end of line", func(t *testing.T) {
		r, ok := tr.NextRestriction(m(3600), m(1000), 40)
		require.True(t, ok)
		assert.Equal(t, Restriction{Distance: m(400)}, r)

		r, ok = tr.NextRestriction(m(4000), m(10), 40)
		require.True(t, ok)
		assert.True(t, r.Distance.IsZero())
	})

	t.Run("beyond lookahead", func(t *testing.T) {
		_, ok := tr.NextRestriction(m(0), m(500), 120)
		assert.False(t, ok)
	})
}
