// Package postgres provides PostgreSQL implementations of the store
// interfaces. Sessions are stored as one row each, with the source image,
// requested decades, and per-decade item states held in JSONB columns so an
// item update touches a single path instead of rewriting the whole session.
package postgres
