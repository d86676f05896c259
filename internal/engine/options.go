package engine

import (
	"io"
	"log/slog"

	"github.com/cxd309/traction-engine/internal/physics"
	"github.com/cxd309/traction-engine/internal/vehicle"
)

type options struct {
	settings physics.Settings
	goods    vehicle.Goods
	logger   *slog.Logger
}

// Option customises a TMS.
type Option func(*options)

// WithSettings sets the defaults used for settings the input leaves at zero.
func WithSettings(s physics.Settings) Option {
	return func(o *options) { o.settings = s }
}

// WithGoods sets the goods table used when the input carries none.
func WithGoods(g vehicle.Goods) Option {
	return func(o *options) { o.goods = g }
}

// WithLogger makes the engine log run boundaries and service state changes.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func buildOptions(opts []Option) options {
	o := options{
		settings: physics.DefaultSettings(),
		goods:    vehicle.DefaultGoods(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// mergeSettings fills every zero field of in from base.
func mergeSettings(base, in physics.Settings) physics.Settings {
	if in.MetersPerTile <= 0 {
		in.MetersPerTile = base.MetersPerTile
	}
	if in.PowerFactorPercent <= 0 {
		in.PowerFactorPercent = base.PowerFactorPercent
	}
	if in.SimtimeFactorPercent <= 0 {
		in.SimtimeFactorPercent = base.SimtimeFactorPercent
	}
	return in
}

func (o options) goodsFor(t vehicle.GoodsTable) vehicle.Goods {
	if len(t) > 0 {
		return t
	}
	return o.goods
}
