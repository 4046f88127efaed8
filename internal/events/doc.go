// Package events provides a lightweight in-process event system used to
// decouple the API layer from background task creation. Services emit
// TaskRequestEvents without knowing which component turns them into
// executable tasks.
package events
