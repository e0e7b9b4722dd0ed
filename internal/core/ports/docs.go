// Package ports defines the contracts between the dispatch core and its
// infrastructure: the persistence gateway (unit of work and repositories)
// and the metrics sink.
package ports
