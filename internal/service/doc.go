// Package service contains the marketplace use cases: user management, the
// course and lecture review workflow, and password reset.
//
// Every operation that acts on behalf of a caller reads the authenticated
// principal from the context and evaluates an authz policy before touching
// the store. Multi-step changes run inside store.RunInTransaction so that a
// failure leaves no partial state. Services depend on the store interfaces and
// on small collaborator interfaces (FileStore, events.EventEmitter), never on
// concrete infrastructure.
package service
