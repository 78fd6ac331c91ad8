// Package retake runs the retake-marker scan and gates concurrent review
// results so the scan's review always comes first.
package retake
