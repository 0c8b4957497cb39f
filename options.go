package sprite

// Option configures a Batch during creation.
//
// Example:
//
//	b, err := sprite.New(r,
//	    sprite.WithCapacity(sprite.Large),
//	    sprite.WithViewport(1280, 720),
//	)
type Option func(*options)

// options holds optional configuration for Batch creation.
type options struct {
	config        Config
	defaultShader Shader
}

// defaultOptions returns the default batch options.
func defaultOptions() options {
	return options{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the whole configuration. Options applied after it
// still override individual fields.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		o.config = cfg
	}
}

// WithCapacity sets the maximum number of quads per frame.
func WithCapacity(c Capacity) Option {
	return func(o *options) {
		o.config.Capacity = c
	}
}

// WithViewport sets the size of the default surface.
func WithViewport(width, height int) Option {
	return func(o *options) {
		o.config.ViewportWidth = width
		o.config.ViewportHeight = height
	}
}

// WithSlotReservation enables or disables per-texture slot reservation.
// With reservation disabled quads occupy buffer slots in Add order.
func WithSlotReservation(enabled bool) Option {
	return func(o *options) {
		o.config.Reserve = enabled
	}
}

// WithDefaultShader sets the shader used by sprites that do not name one.
// Without it, the backend's built-in shader is used.
func WithDefaultShader(s Shader) Option {
	return func(o *options) {
		o.defaultShader = s
	}
}
