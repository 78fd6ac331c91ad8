// Package studio wraps the production backend HTTP API: retake scans,
// spoken-command preparation and execution, speech synthesis, assembly job
// submission and status, publication, and quota prechecks.
package studio
