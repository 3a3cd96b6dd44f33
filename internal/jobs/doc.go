// Package jobs persists dispatched download jobs in SQLite.
//
// Every magnet handed to the torrent client gets a row: launched jobs carry
// the child PID, failed launches carry the launch error, and jobs whose
// process exit was observed are moved to the exited state with their exit
// code. The registry lets `onepace jobs` show what a previous run started.
//
// The database is transient bookkeeping rather than an archive. Schema changes
// bump schemaVersion in schema.go; users delete the database to adopt them.
package jobs
