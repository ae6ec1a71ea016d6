// Package domain contains the core business entities for the newsletter
// digest pipeline: newsletters, batches, digests and run reports.
// Domain types carry no dependencies on adapters or external services.
package domain
