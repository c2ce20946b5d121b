// Package domain contains the core business entities of the course marketplace:
// users with their roles, courses and lectures with their review lifecycle, and
// password reset codes. It is independent of storage and transport.
package domain
