// Package batch runs one tool operation over several Box IDs and reports
// per-ID outcomes. It parses ID arguments given as a single string, a comma
// separated string or an array, runs the operation with bounded parallelism
// and keeps partial failures from hiding the successes.
package batch
