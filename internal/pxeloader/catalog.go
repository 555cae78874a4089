// Package pxeloader classifies, resolves and recommends PXE loaders.
//
// All lookups run against an immutable Catalog built once at process start.
// Every exported operation is total: "no answer" is returned as ok == false,
// never as an error.
//
// Import Path: hostconsole.io/provisioning/internal/pxeloader
package pxeloader

import (
	"strings"

	"hostconsole.io/provisioning/internal/domain"
	apperrors "hostconsole.io/provisioning/internal/pkg/errors"
)

// LoaderFile is a boot file shipped for a loader kind.
type LoaderFile struct {
	Path     string                `yaml:"path"`
	Firmware domain.FirmwareFamily `yaml:"firmware"`
}

// KindSpec defines one loader kind of the catalog.
type KindSpec struct {
	Kind domain.LoaderKind `yaml:"kind"`

	// DisplayName is the first token of every label rendered for the kind.
	DisplayName string `yaml:"display_name"`

	// Firmware is the family used when the kind is recommended.
	Firmware domain.FirmwareFamily `yaml:"firmware"`

	Files []LoaderFile `yaml:"files"`
}

// defaultKinds mirrors the boot files the TFTP tree ships.
var defaultKinds = []KindSpec{
	{
		Kind:        domain.LoaderKindPXELinux,
		DisplayName: "PXELinux",
		Firmware:    domain.FirmwareBIOS,
		Files: []LoaderFile{
			{Path: "pxelinux.0", Firmware: domain.FirmwareBIOS},
			{Path: "pxelinux.efi", Firmware: domain.FirmwareUEFI},
		},
	},
	{
		Kind:        domain.LoaderKindPXEGrub,
		DisplayName: "Grub",
		Firmware:    domain.FirmwareUEFI,
		Files: []LoaderFile{
			{Path: "grub/grubx64.efi", Firmware: domain.FirmwareUEFI},
		},
	},
	{
		Kind:        domain.LoaderKindPXEGrub2,
		DisplayName: "Grub2",
		Firmware:    domain.FirmwareUEFI,
		Files: []LoaderFile{
			{Path: "grub2/grubx64.efi", Firmware: domain.FirmwareUEFI},
			{Path: "grub2/shimx64.efi", Firmware: domain.FirmwareUEFI},
			{Path: "grub2/grubia32.efi", Firmware: domain.FirmwareUEFI},
			{Path: "grub2/shimia32.efi", Firmware: domain.FirmwareUEFI},
			{Path: "grub2/grubaa64.efi", Firmware: domain.FirmwareUEFI},
			{Path: "grub2/shimaa64.efi", Firmware: domain.FirmwareUEFI},
		},
	},
	{
		Kind:        domain.LoaderKindIPXE,
		DisplayName: "iPXE",
		Firmware:    domain.FirmwareBIOS,
		Files: []LoaderFile{
			{Path: "undionly-ipxe.0", Firmware: domain.FirmwareBIOS},
			{Path: "ipxe.efi", Firmware: domain.FirmwareUEFI},
		},
	},
}

// renderedFamilies are the families a label may be rendered for.
var renderedFamilies = []domain.FirmwareFamily{domain.FirmwareBIOS, domain.FirmwareUEFI}

type fileEntry struct {
	kind     domain.LoaderKind
	firmware domain.FirmwareFamily
}

// Catalog is the closed set of loader kinds known to the console.
// A Catalog is immutable and safe for concurrent use.
type Catalog struct {
	specs   []KindSpec
	byKind  map[domain.LoaderKind]int
	byFile  map[string]fileEntry
	byLabel map[domain.LoaderLabel]domain.LoaderKind
}

var defaultCatalog = mustCatalog(defaultKinds...)

// DefaultCatalog returns the built-in catalog.
func DefaultCatalog() *Catalog {
	return defaultCatalog
}

func mustCatalog(specs ...KindSpec) *Catalog {
	c, err := NewCatalog(specs...)
	if err != nil {
		panic(err)
	}
	return c
}

// NewCatalog validates specs and builds the lookup tables.
func NewCatalog(specs ...KindSpec) (*Catalog, error) {
	if len(specs) == 0 {
		return nil, apperrors.ErrCatalogInvalidf("catalog defines no loader kinds")
	}

	c := &Catalog{
		specs:   make([]KindSpec, 0, len(specs)),
		byKind:  make(map[domain.LoaderKind]int, len(specs)),
		byFile:  make(map[string]fileEntry),
		byLabel: make(map[domain.LoaderLabel]domain.LoaderKind, len(specs)*len(renderedFamilies)),
	}
	displayNames := make(map[string]domain.LoaderKind, len(specs))

	for _, spec := range specs {
		if err := validateSpec(spec); err != nil {
			return nil, err
		}
		if _, dup := c.byKind[spec.Kind]; dup {
			return nil, apperrors.ErrCatalogInvalidf("duplicate loader kind %q", spec.Kind)
		}
		if other, dup := displayNames[spec.DisplayName]; dup {
			return nil, apperrors.ErrCatalogInvalidf("display name %q used by %q and %q", spec.DisplayName, other, spec.Kind)
		}
		displayNames[spec.DisplayName] = spec.Kind

		files := make([]LoaderFile, len(spec.Files))
		copy(files, spec.Files)
		for _, f := range files {
			if other, dup := c.byFile[f.Path]; dup {
				return nil, apperrors.ErrCatalogInvalidf("boot file %q claimed by %q and %q", f.Path, other.kind, spec.Kind)
			}
			c.byFile[f.Path] = fileEntry{kind: spec.Kind, firmware: f.Firmware}
		}
		spec.Files = files

		for _, family := range renderedFamilies {
			c.byLabel[renderLabel(spec.DisplayName, family)] = spec.Kind
		}

		c.byKind[spec.Kind] = len(c.specs)
		c.specs = append(c.specs, spec)
	}

	// Filenames resolve before labels, so a file named like a label would
	// shadow it.
	for _, spec := range c.specs {
		for _, f := range spec.Files {
			if owner, clash := c.byLabel[domain.LoaderLabel(f.Path)]; clash {
				return nil, apperrors.ErrCatalogInvalidf("boot file %q of %q collides with a label of %q", f.Path, spec.Kind, owner)
			}
		}
	}
	return c, nil
}

func validateSpec(spec KindSpec) error {
	if spec.Kind == "" {
		return apperrors.ErrCatalogInvalidf("loader kind is empty")
	}
	if spec.DisplayName == "" || len(strings.Fields(spec.DisplayName)) != 1 || strings.TrimSpace(spec.DisplayName) != spec.DisplayName {
		return apperrors.ErrCatalogInvalidf("loader kind %q: display name %q must be a single token", spec.Kind, spec.DisplayName)
	}
	if spec.DisplayName == domain.NoLoader {
		return apperrors.ErrCatalogInvalidf("loader kind %q: display name %q is reserved", spec.Kind, spec.DisplayName)
	}
	if !renderable(spec.Firmware) {
		return apperrors.ErrCatalogInvalidf("loader kind %q: firmware %q must be bios or uefi", spec.Kind, spec.Firmware)
	}
	for _, f := range spec.Files {
		if strings.TrimSpace(f.Path) == "" {
			return apperrors.ErrCatalogInvalidf("loader kind %q: boot file path is empty", spec.Kind)
		}
		if f.Path == domain.NoLoader {
			return apperrors.ErrCatalogInvalidf("loader kind %q: boot file path %q is reserved", spec.Kind, f.Path)
		}
		if !renderable(f.Firmware) {
			return apperrors.ErrCatalogInvalidf("loader kind %q: boot file %q firmware %q must be bios or uefi", spec.Kind, f.Path, f.Firmware)
		}
	}
	return nil
}

func renderable(f domain.FirmwareFamily) bool {
	return f == domain.FirmwareBIOS || f == domain.FirmwareUEFI
}

func renderLabel(displayName string, family domain.FirmwareFamily) domain.LoaderLabel {
	return domain.LoaderLabel(displayName + " " + family.Suffix())
}

// Kinds returns the catalog kinds in definition order.
func (c *Catalog) Kinds() []domain.LoaderKind {
	kinds := make([]domain.LoaderKind, len(c.specs))
	for i, s := range c.specs {
		kinds[i] = s.Kind
	}
	return kinds
}

// Specs returns a copy of the kind definitions in definition order.
func (c *Catalog) Specs() []KindSpec {
	out := make([]KindSpec, len(c.specs))
	for i, s := range c.specs {
		s.Files = append([]LoaderFile(nil), s.Files...)
		out[i] = s
	}
	return out
}

// Lookup returns the definition of kind.
func (c *Catalog) Lookup(kind domain.LoaderKind) (KindSpec, bool) {
	i, ok := c.byKind[kind]
	if !ok {
		return KindSpec{}, false
	}
	spec := c.specs[i]
	spec.Files = append([]LoaderFile(nil), spec.Files...)
	return spec, true
}

// Contains reports whether kind belongs to the catalog.
func (c *Catalog) Contains(kind domain.LoaderKind) bool {
	_, ok := c.byKind[kind]
	return ok
}

// Render returns the label for kind using its canonical firmware family.
func (c *Catalog) Render(kind domain.LoaderKind) (domain.LoaderLabel, bool) {
	i, ok := c.byKind[kind]
	if !ok {
		return "", false
	}
	spec := c.specs[i]
	return renderLabel(spec.DisplayName, spec.Firmware), true
}

// RenderFirmware returns the label for kind booted with the given family.
func (c *Catalog) RenderFirmware(kind domain.LoaderKind, family domain.FirmwareFamily) (domain.LoaderLabel, bool) {
	i, ok := c.byKind[kind]
	if !ok || !renderable(family) {
		return "", false
	}
	return renderLabel(c.specs[i].DisplayName, family), true
}

// KindForFile matches a boot file path exactly.
func (c *Catalog) KindForFile(path string) (domain.LoaderKind, bool) {
	entry, ok := c.byFile[path]
	return entry.kind, ok
}

// LabelForFile returns the label of the loader a boot file belongs to,
// rendered for the firmware family the file targets.
func (c *Catalog) LabelForFile(path string) (domain.LoaderLabel, bool) {
	entry, ok := c.byFile[path]
	if !ok {
		return "", false
	}
	return c.RenderFirmware(entry.kind, entry.firmware)
}

// KindForLabel matches a rendered label exactly, ignoring which firmware
// suffix it carries.
func (c *Catalog) KindForLabel(label string) (domain.LoaderKind, bool) {
	kind, ok := c.byLabel[domain.LoaderLabel(label)]
	return kind, ok
}
