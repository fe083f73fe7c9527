package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Pattern Errors (DL100-DL119)
	// ============================================

	"DL101": {
		Category: CategoryPattern,
		Message:  "Invalid link template",
		Detail:   "A platform link template could not be compiled. Templates need a scheme, a concrete host and balanced {placeholders}, one per path segment.",
	},
	"DL102": {
		Category: CategoryPattern,
		Message:  "Unknown template field",
		Detail:   "A {placeholder} names a field the route schema does not declare.",
	},
	"DL103": {
		Category: CategoryPattern,
		Message:  "Required field never bound",
		Detail:   "A template leaves a schema field without a default unbound, so no link could ever decode into the route.",
	},
	"DL104": {
		Category: CategoryPattern,
		Message:  "Invalid route schema",
		Detail:   "A route schema declares an unsupported kind, an empty name or a duplicate field.",
	},

	// ============================================
	// Configuration Errors (DL200-DL219)
	// ============================================

	"DL201": {
		Category:   CategoryConfig,
		Message:    "Configuration file not found",
		Detail:     "No deeplink.json, deeplink.yaml or deeplink.toml was found.",
		Suggestion: "Create deeplink.yaml or pass --config",
	},
	"DL202": {
		Category: CategoryConfig,
		Message:  "Configuration parse error",
		Detail:   "The configuration file could not be decoded.",
	},
	"DL203": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
	},
	"DL204": {
		Category: CategoryConfig,
		Message:  "Invalid account entry",
		Detail:   "Every account needs an id, a bare host name and a known family (mastodon, misskey, bluesky, x, vvo). Keys must be unique.",
	},
	"DL205": {
		Category: CategoryConfig,
		Message:  "Unsupported document format",
		Detail:   "Configuration and account documents must be JSON, YAML or TOML.",
	},

	// ============================================
	// Account Source Errors (DL300-DL319)
	// ============================================

	"DL301": {
		Category:   CategorySource,
		Message:    "Account source unavailable",
		Detail:     "The linked account list could not be loaded.",
		Suggestion: "Check the accountSource section and that the file or object is reachable",
	},
	"DL302": {
		Category:   CategorySource,
		Message:    "Account object too large",
		Suggestion: "Raise accountSource.maxSize or trim the account list",
	},

	// ============================================
	// Input Errors (DL400-DL419)
	// ============================================

	"DL401": {
		Category: CategoryInput,
		Message:  "Not a web link",
		Detail:   "Only absolute http and https links can be resolved.",
	},

	// ============================================
	// CLI Errors (DL500-DL519)
	// ============================================

	"DL501": {
		Category: CategoryCLI,
		Message:  "Server failed",
	},
	"DL502": {
		Category: CategoryCLI,
		Message:  "Invalid flag value",
	},
}

// Lookup returns the template registered for code.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Codes returns every registered error code.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}
