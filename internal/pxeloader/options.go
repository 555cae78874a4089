package pxeloader

import "go.uber.org/zap"

// Option configures a Resolver, Selector or Support.
type Option func(*options)

type options struct {
	catalog  *Catalog
	policy   Policy
	log      *zap.Logger
	observer Observer
}

func buildOptions(opts []Option) options {
	o := options{
		catalog:  DefaultCatalog(),
		policy:   DefaultPolicy(),
		log:      zap.NewNop(),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// WithCatalog replaces the default catalog. nil is ignored.
func WithCatalog(c *Catalog) Option {
	return func(o *options) {
		if c != nil {
			o.catalog = c
		}
	}
}

// WithPolicy replaces the default preference policy. nil is ignored.
func WithPolicy(p Policy) Option {
	return func(o *options) {
		if p != nil {
			o.policy = p
		}
	}
}

// WithLogger sets the logger. nil is ignored.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithObserver sets the outcome observer. nil is ignored.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}
