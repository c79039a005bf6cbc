// Package checksum provides content hashing for rewrite targets.
//
// Each processed file records the SHA-256 of its content before and after
// substitution, so a report can show exactly which files changed and a
// second pass can be verified to be a no-op.
//
// # Example Usage
//
//	calculator := checksum.New()
//	before := calculator.Calculate(original)
//	after := calculator.Calculate(rewritten)
//
// # Thread Safety
//
// SHA256 is safe for concurrent use by multiple goroutines.
package checksum
