package pxeloader

import "hostconsole.io/provisioning/internal/domain"

// MatchStrategy names how a host loader identifier was resolved.
type MatchStrategy string

const (
	MatchUnset    MatchStrategy = "unset"
	MatchFilename MatchStrategy = "filename"
	MatchLabel    MatchStrategy = "label"
	MatchNone     MatchStrategy = "unrecognized"
)

// Observer receives resolution and selection outcomes. Implementations must
// be safe for concurrent use and must not block.
type Observer interface {
	ObserveResolution(strategy MatchStrategy, kind domain.LoaderKind)
	ObserveSelection(kind domain.LoaderKind, ok bool)
}

type nopObserver struct{}

func (nopObserver) ObserveResolution(MatchStrategy, domain.LoaderKind) {}
func (nopObserver) ObserveSelection(domain.LoaderKind, bool)           {}
