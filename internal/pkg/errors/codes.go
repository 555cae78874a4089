package errors

// Error codes. Messages are English and intended for logs.

// Loader catalog and policy error codes.
const (
	CodeCatalogInvalid = "LOADER_CATALOG_INVALID"
	CodePolicyUnknown  = "LOADER_POLICY_UNKNOWN"
)

// Configuration error codes.
const (
	CodeConfigInvalid = "CONFIG_INVALID"
)

// Collaborator error codes.
const (
	CodeNotificationInvalid  = "NOTIFICATION_INVALID"
	CodeNotificationDelivery = "NOTIFICATION_DELIVERY_FAILED"
	CodeMigrationFailed      = "MIGRATION_FAILED"
)

// ErrCatalogInvalidf creates a catalog validation error.
func ErrCatalogInvalidf(format string, args ...interface{}) *AppError {
	return Invalid(CodeCatalogInvalid, sprintf(format, args...))
}

// ErrPolicyUnknown creates an unknown preference policy error.
func ErrPolicyUnknown(name string) *AppError {
	return Invalid(CodePolicyUnknown, "unknown loader preference policy: "+name).
		WithParams(map[string]interface{}{"policy": name})
}
