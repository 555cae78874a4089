package pxeloader

import (
	"go.uber.org/zap"

	"hostconsole.io/provisioning/internal/domain"
)

// Selector recommends a loader for an operating system from the kinds it
// supports and the kinds its default templates provide.
type Selector struct {
	catalog  *Catalog
	policy   Policy
	log      *zap.Logger
	observer Observer
}

// NewSelector creates a Selector. Options supply the catalog, policy,
// logger and observer; unspecified ones fall back to the defaults.
func NewSelector(opts ...Option) *Selector {
	o := buildOptions(opts)
	return &Selector{catalog: o.catalog, policy: o.policy, log: o.log, observer: o.observer}
}

// Select returns the label of the preferred loader, or false when supported
// and the templates share no catalog kind.
func (s *Selector) Select(supported []domain.LoaderKind, defaults []domain.ProvisioningTemplate) (domain.LoaderLabel, bool) {
	label, kind, ok := s.selectKind(supported, defaults)
	s.observer.ObserveSelection(kind, ok)
	return label, ok
}

// SelectForOS is Select over an operating system snapshot.
func (s *Selector) SelectForOS(os domain.OperatingSystem) (domain.LoaderLabel, bool) {
	return s.Select(os.TemplateKinds, os.DefaultTemplates)
}

func (s *Selector) selectKind(supported []domain.LoaderKind, defaults []domain.ProvisioningTemplate) (domain.LoaderLabel, domain.LoaderKind, bool) {
	if len(supported) == 0 {
		return "", "", false
	}
	available := availableKinds(defaults)
	if len(available) == 0 {
		return "", "", false
	}

	candidates := make([]domain.LoaderKind, 0, len(supported))
	seen := make(map[domain.LoaderKind]struct{}, len(supported))
	for _, kind := range supported {
		if _, dup := seen[kind]; dup {
			continue
		}
		seen[kind] = struct{}{}
		if _, ok := available[kind]; ok && s.catalog.Contains(kind) {
			candidates = append(candidates, kind)
		}
	}
	if len(candidates) == 0 {
		return "", "", false
	}

	kind, ok := s.policy.Choose(candidates)
	if !ok || !containsKind(candidates, kind) {
		s.log.Debug("preference policy chose no candidate",
			zap.Stringers("candidates", candidates),
			zap.Stringer("chosen", kind),
		)
		return "", "", false
	}

	label, ok := s.catalog.Render(kind)
	if !ok {
		return "", "", false
	}
	s.log.Debug("preferred pxe loader selected",
		zap.Stringers("candidates", candidates),
		zap.Stringer("kind", kind),
		zap.Stringer("label", label),
	)
	return label, kind, true
}

func availableKinds(templates []domain.ProvisioningTemplate) map[domain.LoaderKind]struct{} {
	out := make(map[domain.LoaderKind]struct{}, len(templates))
	for _, t := range templates {
		if t.HasKind() {
			out[t.Kind] = struct{}{}
		}
	}
	return out
}

func containsKind(kinds []domain.LoaderKind, kind domain.LoaderKind) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}
