// Package errors provides structured, actionable error values for rxstate.
//
// Every error carries a code (e.g., "R011") that maps to a registered
// template with a category, a short message and an optional hint:
//
//	err := errors.New("R011").WithDetailf("duplicate name %q", name)
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR R011: Stream names must be unique within a combination
//	//
//	//   category: value
//	//   duplicate name "a"
//	//
//	//   Hint: Rename one of the participants; ...
//
// # Categories
//
//   - configuration: primitive installed twice, used before installation,
//     unreadable config or scenario files
//   - value: blank, duplicated or unknown names
//   - type: nil callbacks and values that are not streams
//
// Kind returns a sentinel per category. A sentinel matches any error of its
// category through errors.Is, so callers can branch on the category without
// caring about the exact code.
package errors
