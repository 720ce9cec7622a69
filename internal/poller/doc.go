// Package poller drives enrichment passes.
//
// The Refresher:
//   - Runs one pass immediately, then one per interval if an interval is set
//   - Never overlaps passes; each pass reads markets one after another
//   - Hands the ordered table of each pass to a SnapshotHandler
package poller
