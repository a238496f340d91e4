package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Configuration Errors (R001-R009, R030-R039)
	// ============================================

	"R001": {
		Category:   CategoryConfiguration,
		Message:    "Observable primitive already installed",
		Suggestion: "Call Setup once per runtime, or Teardown before installing again.",
	},
	"R002": {
		Category:   CategoryConfiguration,
		Message:    "Observable primitive not installed",
		Suggestion: "Call Setup with a primitive before constructing streams.",
	},
	"R003": {
		Category:   CategoryConfiguration,
		Message:    "Value is not an observable primitive",
		Suggestion: "Pass observable.Basic{} or another observable.Primitive.",
	},
	"R030": {
		Category: CategoryConfiguration,
		Message:  "Invalid configuration file",
	},
	"R031": {
		Category: CategoryConfiguration,
		Message:  "Invalid scenario file",
	},

	// ============================================
	// Value Errors (R010-R019)
	// ============================================

	"R010": {
		Category: CategoryValue,
		Message:  "Stream name must not be blank",
	},
	"R011": {
		Category:   CategoryValue,
		Message:    "Stream names must be unique within a combination",
		Suggestion: "Rename one of the participants; the combining stream's own name counts too.",
	},
	"R012": {
		Category: CategoryValue,
		Message:  "Emitter or method name must not be blank",
	},
	"R013": {
		Category: CategoryValue,
		Message:  "Unknown method",
	},

	// ============================================
	// Type Errors (R020-R029)
	// ============================================

	"R020": {
		Category: CategoryType,
		Message:  "Next expects an updater function",
	},
	"R021": {
		Category: CategoryType,
		Message:  "Plugin is not callable",
	},
	"R022": {
		Category:   CategoryType,
		Message:    "Event runner factory must return an observable",
		Suggestion: "Return the input stream or a stream built from it.",
	},
	"R023": {
		Category: CategoryType,
		Message:  "Participant is not a state stream",
	},
	"R024": {
		Category: CategoryType,
		Message:  "Emitter expects an updater function",
	},
	"R025": {
		Category: CategoryType,
		Message:  "Unsupported observable source",
	},
	"R026": {
		Category: CategoryType,
		Message:  "Method must not be nil",
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
