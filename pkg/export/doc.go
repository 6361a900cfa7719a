// Package export runs bulk storage operations with bounded parallelism
// and partial-failure semantics.
//
// A tenant archiving every file before a grace window closes cannot
// afford one corrupt object aborting the batch: Run collects each
// item's error alongside the item and keeps going, failing the batch as
// a whole only when nothing succeeded.
package export
