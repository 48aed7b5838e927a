// Package importers reconciles external Letterboxd data against the movie
// catalog.
//
// Two entry points exist: Importer.Run for the CSV exports (reviews,
// watchlist, likes) and RSSImporter.Sync for a public profile feed. Both
// run inside one database transaction per invocation, deduplicate catalog
// entries on the canonical film URI, and maintain exactly one MovieUser
// relationship per (user, movie) pair with diff-and-save update semantics:
// a no-op update issues no write and is not counted.
package importers
