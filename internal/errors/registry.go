package errors

import "sort"

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
	// Generation Errors (E100-E119)
	// ============================================

	"E100": {
		Category: CategoryGenerate,
		Message:  "Modules not found",
		Detail:   "One or more requested modules have no compiled artifact. Every missing module is listed.",
		DocURL:   "https://cannon.dev/docs/errors/E100",
	},
	"E101": {
		Category: CategoryGenerate,
		Message:  "Missing ABI",
		Detail:   "A module artifact has no ABI, so its functions cannot be routed.",
		DocURL:   "https://cannon.dev/docs/errors/E101",
	},
	"E102": {
		Category: CategoryGenerate,
		Message:  "Missing bytecode",
		Detail:   "The deterministic variant precomputes module addresses from creation bytecode. Interfaces and abstract contracts have none.",
		DocURL:   "https://cannon.dev/docs/errors/E102",
	},
	"E103": {
		Category: CategoryGenerate,
		Message:  "Duplicate selector",
		Detail:   "Two module functions share the same 4-byte selector. A router can forward each selector to one module only.",
		DocURL:   "https://cannon.dev/docs/errors/E103",
	},
	"E104": {
		Category: CategoryGenerate,
		Message:  "Multiple special handlers",
		Detail:   "At most one module may declare a fallback function and at most one a receive function.",
		DocURL:   "https://cannon.dev/docs/errors/E104",
	},
	"E105": {
		Category: CategoryGenerate,
		Message:  "Invalid router name",
		Detail:   "Router names must form a valid Solidity identifier once converted to PascalCase.",
		DocURL:   "https://cannon.dev/docs/errors/E105",
	},
	"E106": {
		Category: CategoryGenerate,
		Message:  "Unknown router variant",
		Detail:   "The variant must be one of deterministic, immutable or dynamic.",
		DocURL:   "https://cannon.dev/docs/errors/E106",
	},
	"E107": {
		Category: CategoryGenerate,
		Message:  "Router generation failed",
		Detail:   "The router could not be generated.",
		DocURL:   "https://cannon.dev/docs/errors/E107",
	},
	"E108": {
		Category: CategoryGenerate,
		Message:  "Router has no modules",
		Detail:   "A router needs at least one module to route to.",
		DocURL:   "https://cannon.dev/docs/errors/E108",
	},

	// ============================================
	// Configuration Errors (E120-E129)
	// ============================================

	"E120": {
		Category: CategoryConfig,
		Message:  "Invalid cannon.json",
		Detail:   "The cannon.json file could not be parsed.",
		DocURL:   "https://cannon.dev/docs/errors/E120",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A configuration value is out of range or malformed.",
		DocURL:   "https://cannon.dev/docs/errors/E121",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Project root not found",
		Detail:   "No cannon.json or foundry.toml was found in this directory or any parent.",
		DocURL:   "https://cannon.dev/docs/errors/E122",
	},

	// ============================================
	// Router Definition Errors (E130-E139)
	// ============================================

	"E130": {
		Category: CategoryDefinition,
		Message:  "Invalid router definition file",
		Detail:   "The router definition TOML could not be parsed.",
		DocURL:   "https://cannon.dev/docs/errors/E130",
	},
	"E131": {
		Category: CategoryDefinition,
		Message:  "Invalid router definition",
		Detail:   "Each [router.<Name>] table needs a non-empty modules list.",
		DocURL:   "https://cannon.dev/docs/errors/E131",
	},

	// ============================================
	// Compile Errors (E140-E149)
	// ============================================

	"E140": {
		Category: CategoryCompile,
		Message:  "Compilation failed",
		Detail:   "forge build failed. Routers are not generated from stale artifacts.",
		DocURL:   "https://cannon.dev/docs/errors/E140",
	},
	"E141": {
		Category: CategoryCompile,
		Message:  "Unreadable artifact",
		Detail:   "A compiled artifact could not be read or decoded.",
		DocURL:   "https://cannon.dev/docs/errors/E141",
	},

	// ============================================
	// Output Errors (E150-E159)
	// ============================================

	"E150": {
		Category: CategoryOutput,
		Message:  "Failed to write router file",
		Detail:   "The generated router could not be written to disk.",
		DocURL:   "https://cannon.dev/docs/errors/E150",
	},
	"E151": {
		Category: CategoryOutput,
		Message:  "Failed to upload router",
		Detail:   "The generated router could not be uploaded to S3.",
		DocURL:   "https://cannon.dev/docs/errors/E151",
	},
	"E152": {
		Category: CategoryOutput,
		Message:  "Failed to load AWS configuration",
		Detail:   "The AWS configuration chain (environment, AWS_PROFILE, shared config files) could not be resolved for S3 output.",
		DocURL:   "https://cannon.dev/docs/errors/E152",
	},

	// ============================================
	// CLI Errors (E160-E169)
	// ============================================

	"E160": {
		Category: CategoryCLI,
		Message:  "File already exists",
		Detail:   "cannon init does not overwrite existing files.",
		DocURL:   "https://cannon.dev/docs/errors/E160",
	},
	"E161": {
		Category: CategoryCLI,
		Message:  "Invalid arguments",
		Detail:   "The command line arguments are incomplete or conflict with each other.",
		DocURL:   "https://cannon.dev/docs/errors/E161",
	},
	"E162": {
		Category: CategoryCLI,
		Message:  "Dev server failed",
		Detail:   "The dev server could not start or stopped unexpectedly.",
		DocURL:   "https://cannon.dev/docs/errors/E162",
	},
}

// GetAllCodes returns all registered error codes in ascending order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
