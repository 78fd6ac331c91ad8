// Package command prepares and executes spoken post-production commands,
// enriching results with synthesized response audio.
package command
