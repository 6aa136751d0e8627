// Package service implements the application use cases on top of the store
// interfaces. Every mutating operation checks access first and then runs in
// one transaction; ordered tasks and columns are changed exclusively through
// the ordering engine. Side effects that must not roll back a change, such as
// cache eviction and assignment events, run after commit.
package service
