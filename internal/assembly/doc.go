// Package assembly validates and submits the backend production job and
// polls it to a terminal state.
package assembly
