// Package store owns inkwell's SQLite database: opening the connection pool,
// applying embedded schema migrations, and the small set of queries the
// settings, permissions, and sitemap subsystems need.
//
// Writes go through retryOnBusy so short SQLITE_BUSY windows (another
// process holding the write lock) do not surface as failures.
package store
