package retake

import (
	"sync"

	"podpress/internal/studio"
)

// ReviewGate enforces review ordering: while a retake scan review is open,
// command results that arrive concurrently are held back and only delivered
// once the scan review is confirmed or cancelled. Scan review always comes
// first.
type ReviewGate struct {
	mu       sync.Mutex
	scanOpen bool
	queued   []studio.ExecutionResult
	deliver  func(studio.ExecutionResult)
}

// NewReviewGate wires the gate to the callback that presents command results
// for review.
func NewReviewGate(deliver func(studio.ExecutionResult)) *ReviewGate {
	return &ReviewGate{deliver: deliver}
}

// BeginScanReview marks the scan review as open. Command results offered
// while it is open are queued.
func (g *ReviewGate) BeginScanReview() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.scanOpen = true
}

// EndScanReview closes the scan review, whether confirmed or cancelled, and
// releases queued command results in arrival order.
func (g *ReviewGate) EndScanReview() {
	g.mu.Lock()
	g.scanOpen = false
	released := g.queued
	g.queued = nil
	g.mu.Unlock()

	for _, result := range released {
		g.deliver(result)
	}
}

// Offer delivers a command result immediately, or queues it when a scan
// review is open.
func (g *ReviewGate) Offer(result studio.ExecutionResult) {
	g.mu.Lock()
	if g.scanOpen {
		g.queued = append(g.queued, result)
		g.mu.Unlock()
		return
	}
	g.mu.Unlock()
	g.deliver(result)
}

// ScanReviewOpen reports whether a scan review currently holds the gate.
func (g *ReviewGate) ScanReviewOpen() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.scanOpen
}
