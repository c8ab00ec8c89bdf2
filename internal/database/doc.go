// Package database provides SQLite-based run history for tunnelcheck.
//
// The history database is opt-in (--save). It stores:
//   - Diagnostic summaries, one row per diagnose run
//   - Repair reports, one row per fix run
//   - Backup files created by each repair, so they can be listed and restored
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. WAL mode lets `tunnelcheck history` read while a run is writing
//
// Full reports are stored as JSON columns; the scalar columns next to them
// exist only for listing and filtering.
package database
