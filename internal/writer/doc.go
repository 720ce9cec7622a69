// Package writer persists enrichment snapshots to PostgreSQL and reads them back.
//
// Each pass is written append-only into market_snapshots inside one
// transaction: all markets of a pass land together or not at all.
// Numeric columns are written from decimal strings, never floats.
package writer
