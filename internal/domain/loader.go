// Package domain provides the data shapes shared by the provisioning console.
//
// Types here carry no behaviour beyond small accessors; classification and
// selection live in internal/pxeloader.
//
// Import Path: hostconsole.io/provisioning/internal/domain
package domain

// LoaderKind is the canonical identity of a PXE loader family.
// Membership is fixed by the loader catalog at process start.
type LoaderKind string

const (
	LoaderKindPXELinux LoaderKind = "PXELinux"
	LoaderKindPXEGrub  LoaderKind = "PXEGrub"
	LoaderKindPXEGrub2 LoaderKind = "PXEGrub2"
	LoaderKindIPXE     LoaderKind = "iPXE"
)

// String implements fmt.Stringer.
func (k LoaderKind) String() string { return string(k) }

// FirmwareFamily is the coarse boot firmware classification of a loader label.
type FirmwareFamily string

const (
	FirmwareNone FirmwareFamily = "none"
	FirmwareBIOS FirmwareFamily = "bios"
	FirmwareUEFI FirmwareFamily = "uefi"
)

// String implements fmt.Stringer.
func (f FirmwareFamily) String() string { return string(f) }

// Suffix returns the label suffix used when rendering a loader for this
// family ("BIOS" or "UEFI"). FirmwareNone has no suffix.
func (f FirmwareFamily) Suffix() string {
	switch f {
	case FirmwareBIOS:
		return "BIOS"
	case FirmwareUEFI:
		return "UEFI"
	default:
		return ""
	}
}

// NoLoader is the literal a host carries when PXE booting is disabled.
const NoLoader = "None"

// LoaderLabel is a human-readable loader name such as "Grub2 UEFI".
type LoaderLabel string

// String implements fmt.Stringer.
func (l LoaderLabel) String() string { return string(l) }
