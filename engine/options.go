package engine

// ============================================================================
// RENDER OPTIONS — Functional options for Render()
// ============================================================================

// Option configures rendering via functional options pattern.
type Option func(*config)

type config struct {
	Palette      []string // used when a spec carries no colors of its own
	RadiusDomain Domain   // radar radius scale
}

// DefaultPalette is the fallback color sequence, cycled by index.
var DefaultPalette = []string{
	"#3b82f6", "#10b981", "#f59e0b", "#ef4444", "#8b5cf6", "#ec4899",
}

// WithPalette replaces the fallback palette for specs without colors.
// An empty palette is ignored.
func WithPalette(colors []string) Option {
	return func(c *config) {
		if len(colors) > 0 {
			c.Palette = colors
		}
	}
}

// WithRadiusDomain overrides the radar radius scale. Inverted bounds are
// ignored.
func WithRadiusDomain(min, max float64) Option {
	return func(c *config) {
		if max > min {
			c.RadiusDomain = Domain{Min: min, Max: max}
		}
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{
		Palette:      DefaultPalette,
		RadiusDomain: Domain{Min: 0, Max: 100},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
