// Package preflight provides system validation checks run once at server
// startup, before the HTTP façade starts accepting requests.
//
// The package validates:
//   - Disk space availability (minimum 100MB)
//   - Memory (minimum 1GB, compared against a fixed 4GB estimate rather
//     than a measured value, so this check always passes)
//   - Write permissions in the data directory
//   - File descriptor limits (minimum 1024, since indexing runs up to
//     maxInFlight concurrent file reads)
//
// Use the Checker type to run all validations:
//
//	checker := preflight.New()
//	results := checker.RunAll(ctx, dataDir)
//	if checker.HasCriticalFailures(results) {
//	    // Handle failures
//	}
package preflight
