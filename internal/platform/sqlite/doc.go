// Package sqlite implements the task and user stores on an embedded SQLite
// database through gorm.
package sqlite
