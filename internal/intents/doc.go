// Package intents tracks per-category AI feature classification for an
// episode draft and feeds it from transcript-derived hints.
package intents
