// Package logging provides slog construction and attribute helpers shared by
// all podpress components. Console output favors a compact key=value line
// format; JSON output is available for log shippers.
package logging
