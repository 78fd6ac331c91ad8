// Package prefs persists small key-value preferences, mainly draft-recovery
// state keyed by source filename and publish defaults.
package prefs
