// Package task manages background job queuing, processing, and lifecycle.
// It provides asynchronous execution of long-running operations like
// turning uploaded documents into flashcards, so they never block HTTP
// request handling and can recover from application restarts. Failed
// tasks are retried with exponential backoff, and execution is bounded
// by soft and hard time limits.
package task
