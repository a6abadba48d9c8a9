// Package match provides name normalization and Levenshtein distance
// calculation for "did you mean" suggestions.
//
// Key functions:
//   - NormalizeIdent: normalizes identifiers for fuzzy matching
//   - Levenshtein: computes edit distance between strings
//   - Score: similarity of two normalized identifiers
//   - Suggest: ranks known names close to a misspelled one
//   - LowerCamel: converts field names to local variable names
package match
