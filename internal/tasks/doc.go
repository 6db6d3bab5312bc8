// Package tasks runs multi-request catalog jobs with progress reporting.
//
// # Operations
//
//  1. [CollectPages] walks a list operation page by page under a rate limiter until the
//     service total, a short page, or a caller cap is reached.
//  2. [Engine.Overview] fetches genres, top artists, top tracks and new albums concurrently.
//  3. [Engine.SyncHistory] pages through the signed in user's play history and records it.
//  4. [Engine.ExportGenreCharts] exports one top products chart per genre with a worker
//     pool and writes a manifest.
//
// # Progress Reporting
//
// Every operation takes an optional progress channel. Sends never block: an update is dropped
// when the channel is full.
package tasks
