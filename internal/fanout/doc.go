// Package fanout runs independent units of work over named subsets or
// job partitions and joins them. Units launch in list order, complete
// in any order, and failures are aggregated after every unit has
// finished: one failed unit never cancels its siblings, and the
// reported failure count is exactly the number of units that returned
// an error.
package fanout
