// Package postgres implements the store interfaces using a PostgreSQL
// database accessed through database/sql with the pgx driver. All stores
// accept a store.DBTX so they run identically on a connection pool or
// inside a caller-managed transaction.
package postgres
