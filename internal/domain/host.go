package domain

// Host is the subset of a managed host record the loader engine reads.
type Host struct {
	Name string `json:"name"`

	// PXELoader is free-form: empty, "None", a boot file path such as
	// "grub2/shimx64.efi", or a loader label such as "Grub2 UEFI".
	PXELoader string `json:"pxe_loader"`

	OperatingSystem *OperatingSystem `json:"operatingsystem,omitempty"`
}

// ProvisioningTemplate is a template owned by the template subsystem.
// Only its template kind association matters here.
type ProvisioningTemplate struct {
	ID   string     `json:"id"`
	Name string     `json:"name"`
	Kind LoaderKind `json:"template_kind,omitempty"`
}

// HasKind reports whether the template is bound to a template kind.
func (t ProvisioningTemplate) HasKind() bool {
	return t.Kind != ""
}

// OperatingSystem is a read-only snapshot of an operating system's
// template configuration.
type OperatingSystem struct {
	Name string `json:"name"`

	// TemplateKinds is ordered; the order is the OS's declared priority.
	TemplateKinds []LoaderKind `json:"template_kinds"`

	// DefaultTemplates are the templates bound to the OS default assignment.
	DefaultTemplates []ProvisioningTemplate `json:"os_default_templates"`
}

// DefaultTemplateKinds returns the template kinds an operating system
// supports when it declares nothing more specific.
func DefaultTemplateKinds() []LoaderKind {
	return []LoaderKind{
		LoaderKindPXELinux,
		LoaderKindPXEGrub,
		LoaderKindPXEGrub2,
		LoaderKindIPXE,
	}
}
