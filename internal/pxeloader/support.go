package pxeloader

import (
	"hostconsole.io/provisioning/internal/domain"
)

// Support bundles the catalog, resolver and selector a host-facing caller
// needs. It is immutable and safe for concurrent use.
type Support struct {
	catalog  *Catalog
	resolver *Resolver
	selector *Selector
}

// New builds a Support from options.
func New(opts ...Option) *Support {
	o := buildOptions(opts)
	shared := []Option{
		WithCatalog(o.catalog),
		WithPolicy(o.policy),
		WithLogger(o.log),
		WithObserver(o.observer),
	}
	return &Support{
		catalog:  o.catalog,
		resolver: NewResolver(shared...),
		selector: NewSelector(shared...),
	}
}

// Catalog returns the catalog in use.
func (s *Support) Catalog() *Catalog { return s.catalog }

// FirmwareType classifies a loader label.
func (s *Support) FirmwareType(label string) domain.FirmwareFamily {
	return ClassifyFirmware(label)
}

// LoaderKind resolves the loader kind currently set on host.
func (s *Support) LoaderKind(host domain.Host) (domain.LoaderKind, bool) {
	return s.resolver.ResolveHost(host)
}

// PreferredLoader recommends a loader for os.
func (s *Support) PreferredLoader(os domain.OperatingSystem) (domain.LoaderLabel, bool) {
	return s.selector.SelectForOS(os)
}

// HostPreferredLoader recommends a loader for the host's operating system.
// Hosts without an operating system get no recommendation.
func (s *Support) HostPreferredLoader(host domain.Host) (domain.LoaderLabel, bool) {
	if host.OperatingSystem == nil {
		return "", false
	}
	return s.PreferredLoader(*host.OperatingSystem)
}

// EffectiveLoader is the label to present for host: its own loader when it
// resolves to a kind, otherwise the recommendation for its operating system.
func (s *Support) EffectiveLoader(host domain.Host) (domain.LoaderLabel, bool) {
	if _, ok := s.LoaderKind(host); ok {
		if label, isFile := s.catalog.LabelForFile(host.PXELoader); isFile {
			return label, true
		}
		return domain.LoaderLabel(host.PXELoader), true
	}
	return s.HostPreferredLoader(host)
}

var defaultSupport = New()

// ResolveLoaderKind resolves identifier against the default catalog.
func ResolveLoaderKind(identifier string) (domain.LoaderKind, bool) {
	return defaultSupport.resolver.Resolve(identifier)
}

// SelectPreferredLoader recommends a loader using the default catalog and
// policy.
func SelectPreferredLoader(supported []domain.LoaderKind, defaults []domain.ProvisioningTemplate) (domain.LoaderLabel, bool) {
	return defaultSupport.selector.Select(supported, defaults)
}
