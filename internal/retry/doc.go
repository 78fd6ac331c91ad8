// Package retry provides the fixed-interval retry policy shared by the
// intent-hint feed, the retake scanner, and poller re-arming.
package retry
