package pxeloader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	apperrors "hostconsole.io/provisioning/internal/pkg/errors"
)

// catalogFile is the on-disk form of a catalog extension:
//
//	kinds:
//	  - kind: PXEGrub2Arm
//	    display_name: Grub2Arm
//	    firmware: uefi
//	    files:
//	      - path: grub2/bootaa64.efi
//	        firmware: uefi
type catalogFile struct {
	Kinds []KindSpec `yaml:"kinds"`
}

// LoadCatalogFile extends base with the kinds defined in the YAML file at path.
// A nil base means the default catalog.
func LoadCatalogFile(path string, base *Catalog) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeCatalogInvalid, "read loader catalog "+path)
	}
	return DecodeCatalog(bytes.NewReader(data), base)
}

// DecodeCatalog extends base with the kinds read from r. Unknown fields are
// rejected. A nil base means the default catalog.
func DecodeCatalog(r io.Reader, base *Catalog) (*Catalog, error) {
	if base == nil {
		base = DefaultCatalog()
	}

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file catalogFile
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, apperrors.Wrap(err, apperrors.CodeCatalogInvalid, "decode loader catalog")
	}
	if len(file.Kinds) == 0 {
		return base, nil
	}

	c, err := NewCatalog(append(base.Specs(), file.Kinds...)...)
	if err != nil {
		return nil, fmt.Errorf("extend loader catalog: %w", err)
	}
	return c, nil
}
