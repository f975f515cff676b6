package common

import (
	"math"
	"testing"
	"time"
)

func TestIsFreshAt(t *testing.T) {
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

	if IsFreshAt(time.Time{}, now, time.Hour) {
		t.Error("zero time should never be fresh")
	}
	if !IsFreshAt(now.Add(-FreshnessRecord), now, FreshnessRecord) {
		t.Error("exactly at the threshold should still be fresh")
	}

	if !IsFreshAt(now.Add(-4*time.Minute), now, FreshnessRecord) {
		t.Error("4 minutes old should be fresh against a 5 minute threshold")
	}
	if IsFreshAt(now.Add(-6*time.Minute), now, FreshnessRecord) {
		t.Error("6 minutes old should be stale against a 5 minute threshold")
	}
}

func TestIsFinite(t *testing.T) {
	if IsFinite(nil) {
		t.Error("nil is not finite")
	}
	if IsFinite(Float(math.NaN())) {
		t.Error("NaN is not finite")
	}
	if IsFinite(Float(math.Inf(-1))) {
		t.Error("-Inf is not finite")
	}
	if !IsFinite(Float(1.5)) {
		t.Error("1.5 is finite")
	}
}
