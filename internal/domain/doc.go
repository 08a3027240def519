// Package domain contains the core business entities, value objects and
// errors of the task API: tasks and their status set, users and
// credentials, and field-level validation errors. It is independent of
// any storage or transport.
package domain
