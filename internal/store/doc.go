// Package store defines the persistence contracts for users, courses, lectures and
// password reset codes. Implementations live in internal/platform/postgres; services
// depend only on these interfaces.
package store
