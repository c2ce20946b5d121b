// Package task runs background work off the request path. Events emitted by
// services are turned into tasks by factories, queued in memory and executed
// by a fixed pool of workers. Tasks are not persisted; work still queued when
// the process exits is lost.
package task
