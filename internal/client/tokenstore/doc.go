// Package tokenstore persists the session credential (access and refresh
// tokens) under the keys "accessToken" and "refreshToken".
//
// Backends:
//   - SQLiteStore: a single-file database (modernc.org/sqlite) migrated with
//     goose; the default for the terminal client.
//   - BadgerStore: a badger key/value directory.
//   - MemoryStore: process-local, for tests and throwaway sessions.
//
// Every backend implements BatchStore, so SaveCredential and ClearCredential
// touch both keys in a single transaction.
package tokenstore
