package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

const docBase = "https://vango.dev/docs/vstore/errors/"

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Config Errors (E120-E129)
	// ============================================

	"E120": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		Detail:   "vstore.json could not be read or parsed.",
		DocURL:   docBase + "E120",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Invalid environment override",
		Detail:   "A VSTORE_* environment variable has a value of the wrong type.",
		DocURL:   docBase + "E121",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A configuration value is out of range.",
		DocURL:   docBase + "E122",
	},

	// ============================================
	// CLI Errors (E140-E149)
	// ============================================

	"E140": {
		Category: CategoryCLI,
		Message:  "Invalid arguments",
		Detail:   "The command was called with missing or invalid arguments.",
		DocURL:   docBase + "E140",
	},

	// ============================================
	// Runtime Errors (E210-E219)
	// ============================================

	"E210": {
		Category: CategoryRuntime,
		Message:  "Store not found",
		Detail:   "No ancestor scope provides this store.",
		DocURL:   docBase + "E210",
	},
	"E211": {
		Category: CategoryRuntime,
		Message:  "State type mismatch",
		Detail:   "A create-state hook returned a value whose type differs from the store's state type.",
		DocURL:   docBase + "E211",
	},
	"E212": {
		Category: CategoryRuntime,
		Message:  "Unknown API field",
		Detail:   "An initialized hook tried to override a field the store API does not declare.",
		DocURL:   docBase + "E212",
	},
	"E213": {
		Category: CategoryRuntime,
		Message:  "Invalid API override",
		Detail:   "An initialized hook returned a value that cannot be assigned to the field, or the field is not overridable.",
		DocURL:   docBase + "E213",
	},
	"E214": {
		Category: CategoryRuntime,
		Message:  "No ambient owner",
		Detail:   "UseProvider and UseConsumer need an ambient owner established with reactive.WithOwner.",
		DocURL:   docBase + "E214",
	},
	"E215": {
		Category: CategoryRuntime,
		Message:  "API not patchable",
		Detail:   "Only struct and pointer-to-struct APIs can be patched by initialized hooks.",
		DocURL:   docBase + "E215",
	},
	"E216": {
		Category: CategoryRuntime,
		Message:  "Store initialization panicked",
		Detail:   "A setup function or hook panicked. The panic is re-raised after observers are notified.",
		DocURL:   docBase + "E216",
	},

	// ============================================
	// Hydration Errors (E220-E229)
	// ============================================

	"E220": {
		Category: CategoryHydration,
		Message:  "Composer not provided",
		Detail:   "The store was initialized in a scope without a hydration composer.",
		DocURL:   docBase + "E220",
	},
	"E221": {
		Category: CategoryHydration,
		Message:  "Hydration data invalid",
		Detail:   "The hydration payload could not be merged into the store state.",
		DocURL:   docBase + "E221",
	},
	"E222": {
		Category: CategoryHydration,
		Message:  "Hydration export failed",
		Detail:   "A live store state could not be encoded.",
		DocURL:   docBase + "E222",
	},

	// ============================================
	// Devtools Errors (E230-E239)
	// ============================================

	"E230": {
		Category: CategoryDevtools,
		Message:  "Invalid devtools filter",
		Detail:   "The mutation filter expression failed to compile or did not return a boolean.",
		DocURL:   docBase + "E230",
	},
	"E231": {
		Category: CategoryDevtools,
		Message:  "Devtools message invalid",
		Detail:   "A message received from a devtools client could not be decoded.",
		DocURL:   docBase + "E231",
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
