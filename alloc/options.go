package alloc

import (
	"io"
	"log/slog"

	"github.com/joshuapare/memkit/internal/format"
	"github.com/joshuapare/memkit/pkg/region"
)

// Options configures an allocator. A nil *Options selects every default.
type Options struct {
	// Logger receives diagnostic events. Nil discards them.
	Logger *slog.Logger

	// Name tags every event from this allocator (e.g. "frame-arena").
	Name string

	// Provider supplies the backing region. Nil selects region.Default.
	Provider region.Provider

	// DefaultAlignment replaces DefaultAlignment for calls passing 0.
	// It must be a power of two.
	DefaultAlignment int
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func (o *Options) logger(kind string) *slog.Logger {
	l := discard
	if o != nil && o.Logger != nil {
		l = o.Logger
	}
	l = l.With("allocator", kind)
	if o != nil && o.Name != "" {
		l = l.With("name", o.Name)
	}
	return l
}

func (o *Options) provider() region.Provider {
	if o == nil || o.Provider == nil {
		return region.Default
	}
	return o.Provider
}

func (o *Options) alignment() (int, error) {
	if o == nil || o.DefaultAlignment == 0 {
		return DefaultAlignment, nil
	}
	return checkAlignment(o.DefaultAlignment, DefaultAlignment)
}

// regionAlignment is the base alignment requested from the provider: the
// platform maximum, raised to the configured default when that is larger.
func regionAlignment(def int) int {
	return max(def, format.MaxAlign)
}
