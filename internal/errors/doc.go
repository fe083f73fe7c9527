// Package errors provides coded, actionable error messages for the deeplink
// command-line tools.
//
// Library packages report failures with sentinel errors and small typed
// wrappers. At the edge, Classify maps those to a LinkError carrying a
// stable code, an explanation and a hint.
//
// # Error Categories
//
// Codes are grouped by category:
//   - pattern (DL1xx): link templates or route schemas that cannot compile
//   - config (DL2xx): configuration files and inline account entries
//   - source (DL3xx): account sources (files, S3 objects)
//   - input (DL4xx): links given on the command line
//   - cli (DL5xx): command and server failures
//
// # Usage
//
//	err := errors.New("DL202").
//	    WithLocation("deeplink.yaml", 7, 3).
//	    WithSuggestion("Indent account entries under 'accounts:'")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR DL202: Configuration parse error
//	//
//	//   deeplink.yaml:7:3
//	//
//	//     5 │ accounts:
//	//     6 │   - id: "1"
//	//   → 7 │   host mastodon.social
//	//       │   ^
//	//
//	//   Hint: Indent account entries under 'accounts:'
package errors
