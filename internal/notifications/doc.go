// Package notifications pushes production lifecycle events over ntfy.
package notifications
