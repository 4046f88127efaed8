// Package service contains the application's business logic, coordinating
// between the domain model, the stores, and the platform adapters. The
// central piece is the DocumentProcessor, which drives the extraction,
// generation and persistence pipeline for uploaded documents.
package service
