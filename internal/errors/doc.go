// Package errors provides structured, actionable error messages for reactor.
//
// Every error carries a code that maps to a registered template:
//   - a short message
//   - a longer explanation
//   - a documentation URL
//
// Errors may additionally point at a location in an input file (a markup
// template or reactor.json), carry the surrounding lines, a hint and an
// example.
//
// # Error Categories
//
//   - runtime: misuse of the reactive engine
//   - markup: malformed markup documents
//   - config: unreadable or invalid reactor.json
//   - server: preview host failures
//   - cli: command-line usage errors
//
// # Usage
//
//	err := errors.New("M001").
//	    WithLocation("page.json", 3, 14).
//	    WithSuggestion("Check the document is valid JSON")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR M001: Invalid markup document
//	//
//	//   page.json:3:14
//	//
//	//      2 │   "type": "div",
//	//   →  3 │   "props": {"id": app}
//	//        │              ^
//	//      4 │ }
//	//
//	//   Hint: Check the document is valid JSON
package errors
