package pxeloader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"hostconsole.io/provisioning/internal/domain"
	apperrors "hostconsole.io/provisioning/internal/pkg/errors"
)

func TestDefaultCatalog(t *testing.T) {
	t.Parallel()

	c := DefaultCatalog()
	require.Equal(t, []domain.LoaderKind{
		domain.LoaderKindPXELinux,
		domain.LoaderKindPXEGrub,
		domain.LoaderKindPXEGrub2,
		domain.LoaderKindIPXE,
	}, c.Kinds())

	tests := []struct {
		kind domain.LoaderKind
		want domain.LoaderLabel
	}{
		{kind: domain.LoaderKindPXELinux, want: "PXELinux BIOS"},
		{kind: domain.LoaderKindPXEGrub, want: "Grub UEFI"},
		{kind: domain.LoaderKindPXEGrub2, want: "Grub2 UEFI"},
		{kind: domain.LoaderKindIPXE, want: "iPXE BIOS"},
	}
	for _, tc := range tests {
		got, ok := c.Render(tc.kind)
		require.True(t, ok)
		require.Equal(t, tc.want, got)
	}

	_, ok := c.Render("PXEUnknown")
	require.False(t, ok)
	require.False(t, c.Contains("PXEUnknown"))

	got, ok := c.RenderFirmware(domain.LoaderKindPXELinux, domain.FirmwareUEFI)
	require.True(t, ok)
	require.Equal(t, domain.LoaderLabel("PXELinux UEFI"), got)

	_, ok = c.RenderFirmware(domain.LoaderKindPXELinux, domain.FirmwareNone)
	require.False(t, ok)
}

func TestCatalog_LookupReturnsCopy(t *testing.T) {
	t.Parallel()

	c := DefaultCatalog()
	spec, ok := c.Lookup(domain.LoaderKindPXEGrub2)
	require.True(t, ok)
	spec.Files[0].Path = "mutated"

	kind, ok := c.KindForFile("grub2/grubx64.efi")
	require.True(t, ok)
	require.Equal(t, domain.LoaderKindPXEGrub2, kind)

	specs := c.Specs()
	specs[0].Files[0].Path = "mutated"
	again, _ := c.Lookup(domain.LoaderKindPXELinux)
	require.Equal(t, "pxelinux.0", again.Files[0].Path)

	_, ok = c.Lookup("PXEUnknown")
	require.False(t, ok)
}

func TestNewCatalog_Validation(t *testing.T) {
	t.Parallel()

	valid := KindSpec{Kind: "K1", DisplayName: "One", Firmware: domain.FirmwareBIOS}
	tests := []struct {
		name  string
		specs []KindSpec
	}{
		{name: "empty catalog"},
		{name: "empty kind", specs: []KindSpec{{DisplayName: "One", Firmware: domain.FirmwareBIOS}}},
		{name: "multi token display name", specs: []KindSpec{{Kind: "K1", DisplayName: "One Two", Firmware: domain.FirmwareBIOS}}},
		{name: "padded display name", specs: []KindSpec{{Kind: "K1", DisplayName: " One", Firmware: domain.FirmwareBIOS}}},
		{name: "reserved display name", specs: []KindSpec{{Kind: "K1", DisplayName: "None", Firmware: domain.FirmwareBIOS}}},
		{name: "none firmware", specs: []KindSpec{{Kind: "K1", DisplayName: "One", Firmware: domain.FirmwareNone}}},
		{name: "duplicate kind", specs: []KindSpec{valid, {Kind: "K1", DisplayName: "Other", Firmware: domain.FirmwareBIOS}}},
		{name: "duplicate display name", specs: []KindSpec{valid, {Kind: "K2", DisplayName: "One", Firmware: domain.FirmwareBIOS}}},
		{
			name: "duplicate boot file",
			specs: []KindSpec{
				{Kind: "K1", DisplayName: "One", Firmware: domain.FirmwareBIOS, Files: []LoaderFile{{Path: "a.0", Firmware: domain.FirmwareBIOS}}},
				{Kind: "K2", DisplayName: "Two", Firmware: domain.FirmwareBIOS, Files: []LoaderFile{{Path: "a.0", Firmware: domain.FirmwareBIOS}}},
			},
		},
		{
			name:  "empty boot file",
			specs: []KindSpec{{Kind: "K1", DisplayName: "One", Firmware: domain.FirmwareBIOS, Files: []LoaderFile{{Firmware: domain.FirmwareBIOS}}}},
		},
		{
			name:  "reserved boot file",
			specs: []KindSpec{{Kind: "K1", DisplayName: "One", Firmware: domain.FirmwareBIOS, Files: []LoaderFile{{Path: "None", Firmware: domain.FirmwareBIOS}}}},
		},
		{
			name: "boot file named like another label",
			specs: []KindSpec{
				{Kind: "K1", DisplayName: "One", Firmware: domain.FirmwareBIOS, Files: []LoaderFile{{Path: "Two UEFI", Firmware: domain.FirmwareUEFI}}},
				{Kind: "K2", DisplayName: "Two", Firmware: domain.FirmwareUEFI},
			},
		},
		{
			name:  "boot file named like own label",
			specs: []KindSpec{{Kind: "K1", DisplayName: "One", Firmware: domain.FirmwareBIOS, Files: []LoaderFile{{Path: "One BIOS", Firmware: domain.FirmwareBIOS}}}},
		},
		{
			name:  "boot file without firmware",
			specs: []KindSpec{{Kind: "K1", DisplayName: "One", Firmware: domain.FirmwareBIOS, Files: []LoaderFile{{Path: "a.0"}}}},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewCatalog(tc.specs...)
			require.Error(t, err)
			require.True(t, apperrors.HasCode(err, apperrors.CodeCatalogInvalid), "err = %v", err)
		})
	}
}

func TestCatalog_Loaders(t *testing.T) {
	t.Parallel()

	c := DefaultCatalog()
	opts := c.Loaders()
	require.Equal(t, LoaderOption{
		Label:    "PXELinux BIOS",
		BootFile: "pxelinux.0",
		Kind:     domain.LoaderKindPXELinux,
		Firmware: domain.FirmwareBIOS,
	}, opts[0])

	file, ok := c.BootFile("Grub2 UEFI")
	require.True(t, ok)
	require.Equal(t, "grub2/grubx64.efi", file)

	_, ok = c.BootFile("Grub2 BIOS")
	require.False(t, ok)

	groups := c.LoadersByFirmware()
	require.Len(t, groups[domain.FirmwareNone], 1)
	require.Equal(t, domain.LoaderLabel("None"), groups[domain.FirmwareNone][0].Label)
	for family, options := range groups {
		for _, opt := range options {
			require.Equal(t, family, opt.Firmware, "label %q", opt.Label)
		}
	}
	require.Len(t, groups[domain.FirmwareUEFI], 4)
	require.Len(t, groups[domain.FirmwareBIOS], 2)
}

func TestCatalog_LabelForFile(t *testing.T) {
	t.Parallel()

	c := DefaultCatalog()
	label, ok := c.LabelForFile("pxelinux.efi")
	require.True(t, ok)
	require.Equal(t, domain.LoaderLabel("PXELinux UEFI"), label)

	_, ok = c.LabelForFile("bootx64.efi")
	require.False(t, ok)
}

const extensionYAML = `
kinds:
  - kind: PXEGrub2Arm
    display_name: Grub2Arm
    firmware: uefi
    files:
      - path: grub2/bootaa64.efi
        firmware: uefi
`

func TestDecodeCatalog(t *testing.T) {
	t.Parallel()

	c, err := DecodeCatalog(strings.NewReader(extensionYAML), nil)
	require.NoError(t, err)
	require.Len(t, c.Kinds(), 5)

	kind, ok := c.KindForFile("grub2/bootaa64.efi")
	require.True(t, ok)
	require.Equal(t, domain.LoaderKind("PXEGrub2Arm"), kind)

	kind, ok = c.KindForLabel("Grub2Arm UEFI")
	require.True(t, ok)
	require.Equal(t, domain.LoaderKind("PXEGrub2Arm"), kind)

	require.Len(t, DefaultCatalog().Kinds(), 4, "default catalog must stay untouched")
}

func TestDecodeCatalog_Errors(t *testing.T) {
	t.Parallel()

	_, err := DecodeCatalog(strings.NewReader("kinds:\n  - kind: X\n    bogus: 1\n"), nil)
	require.True(t, apperrors.HasCode(err, apperrors.CodeCatalogInvalid), "err = %v", err)

	_, err = DecodeCatalog(strings.NewReader("kinds:\n  - kind: PXEGrub\n    display_name: Grub3\n    firmware: uefi\n"), nil)
	require.True(t, apperrors.HasCode(err, apperrors.CodeCatalogInvalid), "err = %v", err)

	c, err := DecodeCatalog(strings.NewReader(""), nil)
	require.NoError(t, err)
	require.Same(t, DefaultCatalog(), c)
}

func TestDecodeCatalog_RejectsLabelShadowingFile(t *testing.T) {
	t.Parallel()

	const shadow = `kinds:
  - kind: Custom
    display_name: Custom
    firmware: uefi
    files:
      - path: "Grub UEFI"
        firmware: uefi
`
	_, err := DecodeCatalog(strings.NewReader(shadow), nil)
	require.True(t, apperrors.HasCode(err, apperrors.CodeCatalogInvalid), "err = %v", err)

	for _, kind := range DefaultCatalog().Kinds() {
		label, ok := DefaultCatalog().Render(kind)
		require.True(t, ok)
		got, ok := NewResolver().Resolve(string(label))
		require.True(t, ok)
		require.Equal(t, kind, got, "label %q", label)
	}
}

func TestLoadCatalogFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "loaders.yaml")
	require.NoError(t, os.WriteFile(path, []byte(extensionYAML), 0o600))

	c, err := LoadCatalogFile(path, DefaultCatalog())
	require.NoError(t, err)
	require.True(t, c.Contains("PXEGrub2Arm"))

	_, err = LoadCatalogFile(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.True(t, apperrors.HasCode(err, apperrors.CodeCatalogInvalid), "err = %v", err)
}
