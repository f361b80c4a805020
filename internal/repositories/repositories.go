// package repositories provides the SQLite persistence layer: the OAuth
// token cache and the run-history store.
//
// Both repositories operate on the schema created by shared.RunMigrations.
package repositories
