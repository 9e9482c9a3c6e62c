package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

const docBase = "https://github.com/vango-dev/reactor/blob/main/docs/errors.md#"

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Runtime Errors (R001-R099)
	// ============================================

	"R001": {
		Category: CategoryRuntime,
		Message:  "Effect failed",
		Detail:   "An effect body returned an error. The effect keeps the dependencies it read before failing.",
		DocURL:   docBase + "r001",
	},
	"R002": {
		Category: CategoryRuntime,
		Message:  "Target cannot be observed",
		Detail:   "The target's identity is not comparable. Targets must be pointers or other comparable values.",
		DocURL:   docBase + "r002",
	},
	"R003": {
		Category: CategoryRuntime,
		Message:  "Runtime used outside its goroutine",
		Detail:   "A reactive runtime is confined to the goroutine that created it. Funnel work through that goroutine.",
		DocURL:   docBase + "r003",
	},

	// ============================================
	// Markup Errors (M001-M099)
	// ============================================

	"M001": {
		Category: CategoryMarkup,
		Message:  "Invalid markup document",
		Detail:   "The markup document is not valid JSON.",
		DocURL:   docBase + "m001",
	},
	"M002": {
		Category: CategoryMarkup,
		Message:  "Markup node has no type",
		Detail:   "Every element node needs a \"type\" naming its tag. Text nodes are plain JSON strings and bindings use {\"bind\": \"key\"}.",
		DocURL:   docBase + "m002",
	},
	"M003": {
		Category: CategoryMarkup,
		Message:  "Invalid markup children",
		Detail:   "\"children\" must be a string, an array of nodes, or null.",
		DocURL:   docBase + "m003",
	},
	"M004": {
		Category: CategoryMarkup,
		Message:  "Unknown node kind",
		Detail:   "The renderer met a node kind it does not know how to render.",
		DocURL:   docBase + "m004",
	},

	// ============================================
	// Config Errors (C001-C099)
	// ============================================

	"C001": {
		Category: CategoryConfig,
		Message:  "Config file not found",
		Detail:   "No reactor.json was found.",
		DocURL:   docBase + "c001",
	},
	"C002": {
		Category: CategoryConfig,
		Message:  "Config parse error",
		Detail:   "reactor.json could not be read or parsed.",
		DocURL:   docBase + "c002",
	},
	"C003": {
		Category: CategoryConfig,
		Message:  "Invalid port",
		Detail:   "Port must be between 0 and 65535.",
		DocURL:   docBase + "c003",
	},
	"C004": {
		Category: CategoryConfig,
		Message:  "Invalid log level",
		Detail:   "log.level must be one of debug, info, warn or error.",
		DocURL:   docBase + "c004",
	},
	"C005": {
		Category: CategoryConfig,
		Message:  "Invalid log format",
		Detail:   "log.format must be text or json.",
		DocURL:   docBase + "c005",
	},
	"C006": {
		Category: CategoryConfig,
		Message:  "Config already exists",
		Detail:   "reactor init does not overwrite an existing reactor.json.",
		DocURL:   docBase + "c006",
	},

	// ============================================
	// Server Errors (S001-S099)
	// ============================================

	"S001": {
		Category: CategoryServer,
		Message:  "Preview server failed",
		Detail:   "The preview server stopped with an error.",
		DocURL:   docBase + "s001",
	},
	"S002": {
		Category: CategoryServer,
		Message:  "Invalid state update",
		Detail:   "State updates must be a JSON value in the request body.",
		DocURL:   docBase + "s002",
	},
	"S003": {
		Category: CategoryServer,
		Message:  "Preview host closed",
		Detail:   "The host loop that owns the reactive runtime has stopped.",
		DocURL:   docBase + "s003",
	},

	// ============================================
	// CLI Errors (X001-X099)
	// ============================================

	"X001": {
		Category: CategoryCLI,
		Message:  "Cannot read input file",
		Detail:   "The file given on the command line could not be read.",
		DocURL:   docBase + "x001",
	},
	"X002": {
		Category: CategoryCLI,
		Message:  "Invalid state file",
		Detail:   "A state file must hold a JSON object mapping keys to values.",
		DocURL:   docBase + "x002",
	},
}

// GetAllCodes returns all registered error codes, sorted.
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
