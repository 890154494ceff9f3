package ingest

// Option configures record ingestion.
type Option func(*options)

type options struct {
	ids IDFunc
}

// WithIDFunc replaces the random record id generator.
func WithIDFunc(fn IDFunc) Option {
	return func(o *options) {
		if fn != nil {
			o.ids = fn
		}
	}
}

func applyOptions(opts []Option) options {
	o := options{ids: randomID}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
