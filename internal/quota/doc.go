// Package quota caches the account usage snapshot and runs per-attempt cost
// prechecks before expensive operations start.
package quota
