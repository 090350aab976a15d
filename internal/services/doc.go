// Package services provides shared error classification and context plumbing
// for pipeline stages and external service clients.
package services
