// Package errors provides structured, actionable error messages for the
// scribe CLI and configuration layer.
//
// The errors package implements a coded error system that:
//   - Shows exact file locations for configuration problems
//   - Explains what went wrong in plain language
//   - Suggests how to fix issues
//   - Links to documentation for deeper understanding
//
// # Error Categories
//
// Errors are organized into categories:
//   - config: Configuration file errors (missing file, bad JSON, bad values)
//   - startup: Daemon startup errors (listener bind failures, bad credentials)
//   - storage: Segment storage errors (offload directory problems)
//   - cli: Command-line usage errors
//
// # Error Codes
//
// Each error has a unique code (e.g., "E100") that maps to:
//   - A short message describing the error
//   - A detailed explanation
//   - A documentation URL
//
// # Usage
//
//	err := errors.New("E101").
//	    WithJSONOffset("scribe.json", data, syntaxErr.Offset).
//	    WithSuggestion("Check that scribe.json is valid JSON")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E101: Configuration parse failed
//	//
//	//   scribe.json:4:18
//	//
//	//      2 │   "control": {
//	//      3 │     "port": 8010,
//	//   → 4 │     "maxSessions": ,
//	//        │                  ^
//	//      5 │   },
//	//      6 │   "admin": {
//	//
//	//   Hint: Check that scribe.json is valid JSON
//	//
//	//   Learn more: https://scribe.dev/docs/errors/E101
package errors
