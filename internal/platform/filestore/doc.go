// Package filestore persists tasks and users as JSON arrays on the local
// filesystem. Every operation reads the file, applies its change and
// rewrites the file atomically (temp file plus rename) under a mutex, so a
// single process never observes a torn write.
package filestore
