package model

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"trackcore/pkg/domain"
)

// LoadPolicy decides what a read or mutation does when the model has an
// identity but its record has not been loaded yet.
type LoadPolicy int

const (
	// LoadOnAccess loads the record from the store on first access.
	LoadOnAccess LoadPolicy = iota
	// FailNotLoaded returns domain.ErrNotLoaded until Load is called.
	FailNotLoaded
	// DefaultUntilLoaded serves the default record to readers until Load is
	// called. Mutations still fail with domain.ErrNotLoaded.
	DefaultUntilLoaded
)

func (p LoadPolicy) String() string {
	switch p {
	case LoadOnAccess:
		return "load"
	case FailNotLoaded:
		return "fail"
	case DefaultUntilLoaded:
		return "default"
	default:
		return fmt.Sprintf("LoadPolicy(%d)", int(p))
	}
}

// ParseLoadPolicy maps a configuration string onto a LoadPolicy. The empty
// string selects LoadOnAccess.
func ParseLoadPolicy(s string) (LoadPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "load":
		return LoadOnAccess, nil
	case "fail":
		return FailNotLoaded, nil
	case "default":
		return DefaultUntilLoaded, nil
	default:
		return LoadOnAccess, fmt.Errorf("unknown load policy %q", s)
	}
}

// Recorder receives one observation per store round trip.
type Recorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

type noopRecorder struct{}

func (noopRecorder) Observe(context.Context, string, bool, time.Duration) {}

type options struct {
	logger  *zap.Logger
	metrics Recorder
	policy  LoadPolicy
	newID   func() domain.Identity
	now     func() time.Time
}

func defaultOptions() options {
	return options{
		logger:  zap.NewNop(),
		metrics: noopRecorder{},
		policy:  LoadOnAccess,
		newID:   domain.NewIdentity,
		now:     time.Now,
	}
}

// Option customises a Model.
type Option func(*options)

// WithLogger sets the structured logger used for load and save events.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics sets the recorder notified of every store round trip.
func WithMetrics(r Recorder) Option {
	return func(o *options) {
		if r != nil {
			o.metrics = r
		}
	}
}

// WithLoadPolicy selects the unloaded-access behaviour.
func WithLoadPolicy(p LoadPolicy) Option {
	return func(o *options) { o.policy = p }
}

// WithIdentityGenerator replaces the generator used to assign identities to
// unbound models on first save.
func WithIdentityGenerator(fn func() domain.Identity) Option {
	return func(o *options) {
		if fn != nil {
			o.newID = fn
		}
	}
}

// WithClock replaces the clock used for timing store round trips.
func WithClock(fn func() time.Time) Option {
	return func(o *options) {
		if fn != nil {
			o.now = fn
		}
	}
}
