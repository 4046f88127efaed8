// Package storage abstracts where uploaded document files live. Two
// backends are provided: the local filesystem for single-node
// deployments and an S3-compatible object store via MinIO.
package storage
