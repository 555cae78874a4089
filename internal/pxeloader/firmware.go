package pxeloader

import (
	"strings"

	"hostconsole.io/provisioning/internal/domain"
)

// ClassifyFirmware buckets a loader label into a firmware family.
//
// "None" is none, a label whose last whitespace-separated token is exactly
// "UEFI" is uefi, and anything else, including unrecognized input, is bios.
func ClassifyFirmware(label string) domain.FirmwareFamily {
	if label == domain.NoLoader {
		return domain.FirmwareNone
	}
	fields := strings.Fields(label)
	if len(fields) > 0 && fields[len(fields)-1] == domain.FirmwareUEFI.Suffix() {
		return domain.FirmwareUEFI
	}
	return domain.FirmwareBIOS
}
