// Package testdb opens migrated databases for tests.
//
// By default every call to Open gets a fresh SQLite database in the test's
// temporary directory, so tests need no external services and can run in
// parallel. When TASKIFY_TEST_DATABASE_URL is set, Open connects to that
// PostgreSQL database instead, migrates it and truncates every table before
// and after the test. Tests sharing a PostgreSQL database must not call
// t.Parallel.
//
//	func TestSomething(t *testing.T) {
//	    db := testdb.Open(t)
//	    users := sqlstore.NewUserStore(db, bcrypt.MinCost)
//	    ...
//	}
package testdb
