package pxeloader

import (
	"go.uber.org/zap"

	"hostconsole.io/provisioning/internal/domain"
)

// Resolver maps a host's free-form loader identifier onto a catalog kind.
type Resolver struct {
	catalog  *Catalog
	log      *zap.Logger
	observer Observer
}

// NewResolver creates a Resolver. Options supply the catalog, logger and
// observer; the policy option is ignored.
func NewResolver(opts ...Option) *Resolver {
	o := buildOptions(opts)
	return &Resolver{catalog: o.catalog, log: o.log, observer: o.observer}
}

// Resolve returns the loader kind named by identifier. Empty input, "None"
// and unrecognized identifiers resolve to no kind.
func (r *Resolver) Resolve(identifier string) (domain.LoaderKind, bool) {
	kind, strategy := r.match(identifier)
	r.observer.ObserveResolution(strategy, kind)
	if strategy == MatchNone {
		r.log.Debug("unrecognized pxe loader", zap.String("pxe_loader", identifier))
	}
	return kind, kind != ""
}

// ResolveHost resolves the loader currently set on host.
func (r *Resolver) ResolveHost(host domain.Host) (domain.LoaderKind, bool) {
	return r.Resolve(host.PXELoader)
}

func (r *Resolver) match(identifier string) (domain.LoaderKind, MatchStrategy) {
	if identifier == "" || identifier == domain.NoLoader {
		return "", MatchUnset
	}
	if kind, ok := r.catalog.KindForFile(identifier); ok {
		return kind, MatchFilename
	}
	if kind, ok := r.catalog.KindForLabel(identifier); ok {
		return kind, MatchLabel
	}
	return "", MatchNone
}
