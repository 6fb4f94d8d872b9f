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
	// Config Errors (E100-E119)
	// ============================================

	"E100": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Detail:   "No scribe.json was found where one was expected.",
		DocURL:   "https://scribe.dev/docs/errors/E100",
	},
	"E101": {
		Category: CategoryConfig,
		Message:  "Configuration parse failed",
		Detail:   "The configuration file is not valid JSON.",
		DocURL:   "https://scribe.dev/docs/errors/E101",
	},
	"E102": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A configuration field holds a value outside its allowed range or format.",
		DocURL:   "https://scribe.dev/docs/errors/E102",
	},
	"E103": {
		Category: CategoryConfig,
		Message:  "Configuration write failed",
		Detail:   "The configuration file could not be written.",
		DocURL:   "https://scribe.dev/docs/errors/E103",
	},

	// ============================================
	// Startup Errors (E120-E139)
	// ============================================

	"E120": {
		Category: CategoryStartup,
		Message:  "Control listener failed",
		Detail:   "The archive control endpoint could not be bound. Another process may already hold the port.",
		DocURL:   "https://scribe.dev/docs/errors/E120",
	},
	"E121": {
		Category: CategoryStartup,
		Message:  "Admin listener failed",
		Detail:   "The admin HTTP endpoint could not be bound. Another process may already hold the port.",
		DocURL:   "https://scribe.dev/docs/errors/E121",
	},
	"E122": {
		Category: CategoryStorage,
		Message:  "Offload directory unavailable",
		Detail:   "The segment offload directory could not be created or opened.",
		DocURL:   "https://scribe.dev/docs/errors/E122",
	},
	"E123": {
		Category: CategoryStartup,
		Message:  "Credentials unreadable",
		Detail:   "The control authentication secret could not be loaded.",
		DocURL:   "https://scribe.dev/docs/errors/E123",
	},

	// ============================================
	// CLI Errors (E140-E159)
	// ============================================

	"E140": {
		Category: CategoryCLI,
		Message:  "Configuration already exists",
		Detail:   "A scribe.json is already present and would be overwritten.",
		DocURL:   "https://scribe.dev/docs/errors/E140",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
