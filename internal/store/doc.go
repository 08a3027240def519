// Package store defines the persistence contracts for tasks and users and
// the errors every backend reports. Backends live under internal/platform;
// callers depend only on these interfaces and sentinel errors.
package store
