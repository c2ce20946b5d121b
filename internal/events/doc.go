// Package events decouples services from background work. A service emits an
// Event describing something that happened, such as a password reset request,
// and registered handlers turn it into work without the service knowing who
// handles it.
package events
