// Package database manages the SQLite connection and schema migrations
// for VeaHome Core.
//
// The database is opened in WAL mode with a busy timeout and a single
// write connection, which is the reliable way to run SQLite under
// concurrent access from Go. Schema migrations are embedded SQL files
// applied in version order, each in its own transaction.
package database
