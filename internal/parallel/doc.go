// Package parallel validates many documents concurrently.
//
// A Pool runs one job per document with bounded concurrency. Each job
// compiles its own schema handle, so no validation state is shared between
// goroutines. Results come back in submission order regardless of which
// worker finished first.
package parallel
