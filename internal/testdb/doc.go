// Package testdb provides helpers for integration tests that run against a
// real PostgreSQL database.
//
// Tests using it are skipped unless COURSEHUB_TEST_DATABASE_URL or DATABASE_URL
// is set. The schema is migrated with the embedded goose migrations, and each
// test runs inside a transaction that is rolled back afterwards:
//
//	db := testdb.Open(t)
//	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	    users := postgres.NewPostgresUserStore(tx, nil)
//	    ...
//	})
package testdb
