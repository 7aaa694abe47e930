package reconcile

import (
	"fmt"
	"time"

	"tlf-sync/core/utils"

	"github.com/shopspring/decimal"
)

// Config holds the sync cycle settings.
type Config struct {
	// Enabled starts the periodic scheduler with the server.
	Enabled bool `mapstructure:"enabled" default:"true"`
	// IntervalSeconds is the polling period of the scheduler.
	IntervalSeconds int `mapstructure:"interval_seconds" default:"30"`
	// CycleTimeoutSeconds bounds a single cycle. Zero means no bound.
	CycleTimeoutSeconds int `mapstructure:"cycle_timeout_seconds" default:"0"`
	// ProducerTag is the controller identity outfeed rows must carry. Empty accepts any producer.
	ProducerTag string `mapstructure:"producer_tag" default:"TLF"`
	// ExitPoints maps source exit slots to destinations, e.g. "1:SAW,2:CNC".
	ExitPoints string `mapstructure:"exit_points" default:"1:SAW,2:CNC,3:OUTFEED_1,4:OUTFEED_2"`
	// BufferSlots lists the machine buffer slot numbers excluded from stock counts.
	BufferSlots string `mapstructure:"buffer_slots" default:"1001,1002"`
	// DimensionDivisor converts source dimensions to ledger units.
	DimensionDivisor string `mapstructure:"dimension_divisor" default:"10"`
	// LockKey is the Redis key of the cross-process cycle lock.
	LockKey string `mapstructure:"lock_key" default:"tlf-sync:cycle"`
	// LockTTLSeconds is how long the cycle lock is held at most.
	LockTTLSeconds int `mapstructure:"lock_ttl_seconds" default:"300"`
	// ChannelPrefix is prepended to the notifier channel names.
	ChannelPrefix string `mapstructure:"channel_prefix" default:"tlf:"`
}

// Interval returns the scheduler period, defaulting to 30s.
func (c Config) Interval() time.Duration {
	if c.IntervalSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.IntervalSeconds) * time.Second
}

// CycleTimeout returns the per-cycle bound, or zero.
func (c Config) CycleTimeout() time.Duration {
	if c.CycleTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.CycleTimeoutSeconds) * time.Second
}

// LockTTL returns the lock expiry, defaulting to five minutes.
func (c Config) LockTTL() time.Duration {
	if c.LockTTLSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.LockTTLSeconds) * time.Second
}

// Options are the parsed, engine-facing form of Config.
type Options struct {
	ProducerTag      string
	ExitPoints       map[int]Destination
	BufferSlots      map[int]struct{}
	DimensionDivisor decimal.Decimal
	CycleTimeout     time.Duration
}

// Options parses the string-encoded settings.
func (c Config) Options() (Options, error) {
	raw, err := utils.ParseIntMap(c.ExitPoints)
	if err != nil {
		return Options{}, fmt.Errorf("invalid sync.exit_points: %w", err)
	}
	exits := make(map[int]Destination, len(raw))
	for slot, name := range raw {
		dest, ok := ParseDestination(name)
		if !ok {
			return Options{}, fmt.Errorf("invalid sync.exit_points: unknown destination %q for exit %d", name, slot)
		}
		exits[slot] = dest
	}

	buffers, err := utils.ParseIntSet(c.BufferSlots)
	if err != nil {
		return Options{}, fmt.Errorf("invalid sync.buffer_slots: %w", err)
	}

	divisor := decimal.NewFromInt(1)
	if c.DimensionDivisor != "" {
		divisor, err = decimal.NewFromString(c.DimensionDivisor)
		if err != nil {
			return Options{}, fmt.Errorf("invalid sync.dimension_divisor: %w", err)
		}
		if !divisor.IsPositive() {
			return Options{}, fmt.Errorf("invalid sync.dimension_divisor: must be positive, got %s", divisor)
		}
	}

	return Options{
		ProducerTag:      c.ProducerTag,
		ExitPoints:       exits,
		BufferSlots:      buffers,
		DimensionDivisor: divisor,
		CycleTimeout:     c.CycleTimeout(),
	}, nil
}
