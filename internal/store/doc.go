// Package store defines the persistence interfaces for users and exam
// sessions. Implementations live in internal/platform/postgres; services
// depend only on these interfaces.
package store
