// Calibra is a SLIPTA laboratory-audit compliance engine.
//
// It scores audit responses against the weighted question catalog, enforces
// composite (parent/sub) question consistency, links audits into progression
// chains, validates review-team composition, and gates the audit lifecycle.
//
// Usage:
//
//	# Compute the score of an audit
//	calibra score <audit-id>
//
//	# List closure blockers and warnings for an audit
//	calibra evaluate <audit-id>
//
//	# Validate a catalog file
//	calibra catalog lint --file slipta-catalog.yaml
//
//	# Show version information
//	calibra version
package main

func main() {
	Execute()
}
