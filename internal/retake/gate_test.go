package retake_test

import (
	"testing"

	"podpress/internal/retake"
	"podpress/internal/studio"
)

func TestGateDeliversImmediatelyWhenNoScanReviewOpen(t *testing.T) {
	var delivered []string
	gate := retake.NewReviewGate(func(r studio.ExecutionResult) {
		delivered = append(delivered, r.CommandID)
	})

	gate.Offer(studio.ExecutionResult{CommandID: "c1"})
	if len(delivered) != 1 || delivered[0] != "c1" {
		t.Fatalf("expected immediate delivery, got %v", delivered)
	}
}

func TestGateQueuesWhileScanReviewOpenAndReleasesInOrder(t *testing.T) {
	var delivered []string
	gate := retake.NewReviewGate(func(r studio.ExecutionResult) {
		delivered = append(delivered, r.CommandID)
	})

	gate.BeginScanReview()
	gate.Offer(studio.ExecutionResult{CommandID: "c1"})
	gate.Offer(studio.ExecutionResult{CommandID: "c2"})
	if len(delivered) != 0 {
		t.Fatalf("results must be held while scan review is open, got %v", delivered)
	}

	gate.EndScanReview()
	if len(delivered) != 2 || delivered[0] != "c1" || delivered[1] != "c2" {
		t.Fatalf("expected release in arrival order, got %v", delivered)
	}

	// Gate is open again afterwards.
	gate.Offer(studio.ExecutionResult{CommandID: "c3"})
	if len(delivered) != 3 || delivered[2] != "c3" {
		t.Fatalf("expected immediate delivery after release, got %v", delivered)
	}
}

func TestGateReleaseOnCancelBehavesLikeConfirm(t *testing.T) {
	var delivered []string
	gate := retake.NewReviewGate(func(r studio.ExecutionResult) {
		delivered = append(delivered, r.CommandID)
	})

	gate.BeginScanReview()
	gate.Offer(studio.ExecutionResult{CommandID: "c1"})
	// Cancelling the scan review uses the same release path.
	gate.EndScanReview()
	if len(delivered) != 1 {
		t.Fatalf("cancel must release queued results, got %v", delivered)
	}
	if gate.ScanReviewOpen() {
		t.Fatal("gate must be closed after cancel")
	}
}
