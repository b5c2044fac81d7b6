package logging

// Field name constants for structured logging.
const (
	FieldError  = "error"
	FieldPath   = "path"
	FieldConfig = "config"
	FieldTheme  = "theme"

	FieldDecorations = "decorations"
	FieldPending     = "pending"
	FieldRevision    = "revision"

	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
