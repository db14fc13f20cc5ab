package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Config Errors (W001-W099)
	// ============================================

	"W001": {
		Category: CategoryConfig,
		Message:  "Config file not found",
		Detail:   "No wayfare.json was found in this directory or any parent directory.",
		DocURL:   "https://wayfare.dev/docs/errors/W001",
	},
	"W002": {
		Category: CategoryConfig,
		Message:  "Config file is not valid JSON",
		Detail:   "wayfare.json could not be parsed. Check for trailing commas or unquoted keys.",
		DocURL:   "https://wayfare.dev/docs/errors/W002",
	},
	"W003": {
		Category: CategoryConfig,
		Message:  "Invalid config value",
		Detail:   "A configuration field has a value outside its allowed range.",
		DocURL:   "https://wayfare.dev/docs/errors/W003",
	},
	"W004": {
		Category: CategoryConfig,
		Message:  "Config file already exists",
		Detail:   "Refusing to overwrite an existing wayfare.json.",
		DocURL:   "https://wayfare.dev/docs/errors/W004",
	},

	// ============================================
	// Route Table Errors (W101-W199)
	// ============================================

	"W101": {
		Category: CategoryRoute,
		Message:  "Route table has no catch-all route",
		Detail:   "Every table must end with a catch-all route (e.g., \"/*rest\") so that every URL resolves to a view.",
		DocURL:   "https://wayfare.dev/docs/errors/W101",
	},
	"W102": {
		Category: CategoryRoute,
		Message:  "Catch-all route is not last",
		Detail:   "Matching is first-match-wins over the ordered table. A catch-all anywhere but last shadows every route after it.",
		DocURL:   "https://wayfare.dev/docs/errors/W102",
	},
	"W103": {
		Category: CategoryRoute,
		Message:  "Duplicate route name",
		Detail:   "Route names identify views and must be unique so PathFor can invert them.",
		DocURL:   "https://wayfare.dev/docs/errors/W103",
	},
	"W104": {
		Category: CategoryRoute,
		Message:  "Malformed route pattern",
		Detail:   "Patterns must start with \"/\" and use :name, :name:type, or *name segments.",
		DocURL:   "https://wayfare.dev/docs/errors/W104",
	},
	"W105": {
		Category: CategoryRoute,
		Message:  "Unknown route name",
		Detail:   "PathFor was called with a name that is not registered in the table.",
		DocURL:   "https://wayfare.dev/docs/errors/W105",
	},
	"W106": {
		Category: CategoryRoute,
		Message:  "Missing route parameter",
		Detail:   "PathFor requires a value for every named parameter in the pattern.",
		DocURL:   "https://wayfare.dev/docs/errors/W106",
	},

	// ============================================
	// Protocol Errors (W201-W299)
	// ============================================

	"W201": {
		Category: CategoryProtocol,
		Message:  "Invalid frame",
		Detail:   "The frame header or payload could not be decoded.",
		DocURL:   "https://wayfare.dev/docs/errors/W201",
	},
	"W202": {
		Category: CategoryProtocol,
		Message:  "Frame payload too large",
		Detail:   "The payload exceeds the 64KB frame limit.",
		DocURL:   "https://wayfare.dev/docs/errors/W202",
	},

	// ============================================
	// Session Errors (W301-W399)
	// ============================================

	"W301": {
		Category: CategorySession,
		Message:  "Session not found",
		Detail:   "The session ID is invalid or the session has been closed.",
		DocURL:   "https://wayfare.dev/docs/errors/W301",
	},
	"W302": {
		Category: CategorySession,
		Message:  "Malformed navigation URL",
		Detail:   "The client sent a URL that failed canonicalization (backslash, NUL, bad escape, or root escape).",
		DocURL:   "https://wayfare.dev/docs/errors/W302",
	},
}

// Lookup returns the template for a code, if registered.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
