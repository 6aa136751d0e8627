// Package events carries domain events from the services that commit a change
// to the components that react to it.
//
// Services publish an Event through an EventEmitter after their transaction
// has committed; handlers such as the job bridge in internal/jobs turn events
// into background work. Handlers never run inside the publishing transaction.
package events
