// Package store defines the narrow persistence interfaces consumed by the
// document-to-flashcard pipeline, together with the shared sentinel errors
// and transaction helpers implementations must honor.
package store
