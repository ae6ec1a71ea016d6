// Package services implements the core summarisation pipeline: batch
// planning, per-batch extraction, response repair and digest synthesis,
// plus the orchestrator that drives a full run.
package services
