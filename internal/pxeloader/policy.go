package pxeloader

import (
	"strings"

	"hostconsole.io/provisioning/internal/domain"
	apperrors "hostconsole.io/provisioning/internal/pkg/errors"
)

// Policy picks the preferred kind among candidates. Candidates arrive in the
// operating system's declared order, deduplicated and never empty.
type Policy interface {
	Choose(candidates []domain.LoaderKind) (domain.LoaderKind, bool)
}

// PolicyFunc adapts a function to Policy.
type PolicyFunc func(candidates []domain.LoaderKind) (domain.LoaderKind, bool)

// Choose implements Policy.
func (f PolicyFunc) Choose(candidates []domain.LoaderKind) (domain.LoaderKind, bool) {
	return f(candidates)
}

// Policy names accepted by PolicyByName.
const (
	PolicyPrecedence = "precedence"
	PolicyDeclared   = "declared"
)

// DefaultPrecedence ranks Grub2 above PXELinux above Grub.
func DefaultPrecedence() []domain.LoaderKind {
	return []domain.LoaderKind{
		domain.LoaderKindPXEGrub2,
		domain.LoaderKindPXELinux,
		domain.LoaderKindPXEGrub,
	}
}

// PrecedencePolicy picks the first kind of order found among the candidates.
// When no candidate is ranked, the first candidate wins.
func PrecedencePolicy(order ...domain.LoaderKind) Policy {
	ranked := append([]domain.LoaderKind(nil), order...)
	return PolicyFunc(func(candidates []domain.LoaderKind) (domain.LoaderKind, bool) {
		if len(candidates) == 0 {
			return "", false
		}
		for _, want := range ranked {
			for _, c := range candidates {
				if c == want {
					return c, true
				}
			}
		}
		return candidates[0], true
	})
}

// DeclaredOrderPolicy picks the candidate the operating system lists first.
func DeclaredOrderPolicy() Policy {
	return PolicyFunc(func(candidates []domain.LoaderKind) (domain.LoaderKind, bool) {
		if len(candidates) == 0 {
			return "", false
		}
		return candidates[0], true
	})
}

// DefaultPolicy is PrecedencePolicy over DefaultPrecedence.
func DefaultPolicy() Policy {
	return PrecedencePolicy(DefaultPrecedence()...)
}

// PolicyByName builds a policy from configuration. An empty precedence list
// means DefaultPrecedence.
func PolicyByName(name string, precedence []domain.LoaderKind) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case PolicyPrecedence, "":
		if len(precedence) == 0 {
			precedence = DefaultPrecedence()
		}
		return PrecedencePolicy(precedence...), nil
	case PolicyDeclared:
		return DeclaredOrderPolicy(), nil
	default:
		return nil, apperrors.ErrPolicyUnknown(name)
	}
}
