// Package postgres provides PostgreSQL implementations of the store interfaces
// defined in internal/store. It owns the SQL, the mapping of PostgreSQL error
// codes to store errors, and the embedded schema migrations.
package postgres
