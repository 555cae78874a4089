package pxeloader

import "hostconsole.io/provisioning/internal/domain"

// LoaderOption is one selectable loader: a label and the boot file it serves.
type LoaderOption struct {
	Label    domain.LoaderLabel
	BootFile string
	Kind     domain.LoaderKind
	Firmware domain.FirmwareFamily
}

// Loaders lists one option per (kind, firmware family) pair that ships a boot
// file. The first file declared for a family is the one served. Options
// follow catalog order, BIOS before UEFI.
func (c *Catalog) Loaders() []LoaderOption {
	var out []LoaderOption
	for _, spec := range c.specs {
		for _, family := range renderedFamilies {
			for _, f := range spec.Files {
				if f.Firmware != family {
					continue
				}
				out = append(out, LoaderOption{
					Label:    renderLabel(spec.DisplayName, family),
					BootFile: f.Path,
					Kind:     spec.Kind,
					Firmware: family,
				})
				break
			}
		}
	}
	return out
}

// LoadersByFirmware groups Loaders by the family ClassifyFirmware assigns to
// each label. The "None" entry is always present under FirmwareNone.
func (c *Catalog) LoadersByFirmware() map[domain.FirmwareFamily][]LoaderOption {
	groups := map[domain.FirmwareFamily][]LoaderOption{
		domain.FirmwareNone: {{Label: domain.NoLoader, Firmware: domain.FirmwareNone}},
	}
	for _, opt := range c.Loaders() {
		family := ClassifyFirmware(string(opt.Label))
		groups[family] = append(groups[family], opt)
	}
	return groups
}

// BootFile returns the file served for a label, if the label names a shipped
// loader.
func (c *Catalog) BootFile(label domain.LoaderLabel) (string, bool) {
	for _, opt := range c.Loaders() {
		if opt.Label == label {
			return opt.BootFile, true
		}
	}
	return "", false
}
