// Package storage provides trail storage backends.
//
// SQLiteStorage is the production backend. It opens the database in WAL mode
// so that concurrent hook processes for different sessions can append while
// "warden trail list" reads. MemoryStorage is used for tests and for
// configurations that disable durable trails.
package storage
