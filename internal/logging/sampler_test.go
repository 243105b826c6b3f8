package logging

import "testing"

func TestProgressSamplerEmitsOnBucketBoundaries(t *testing.T) {
	s := NewProgressSampler(5)

	if !s.ShouldLog(0, "downloading") {
		t.Fatal("first event should emit")
	}
	if s.ShouldLog(1, "downloading") {
		t.Error("1% should be suppressed within the same bucket")
	}
	if s.ShouldLog(4.9, "downloading") {
		t.Error("4.9% should be suppressed within the same bucket")
	}
	if !s.ShouldLog(5, "downloading") {
		t.Error("5% should emit on the bucket boundary")
	}
	if !s.ShouldLog(17, "downloading") {
		t.Error("jumping buckets should emit")
	}
	if s.ShouldLog(17.5, "downloading") {
		t.Error("17.5% should be suppressed")
	}
	if !s.ShouldLog(100, "downloading") {
		t.Error("100% should emit")
	}
}

func TestProgressSamplerEmitsOnPhaseChange(t *testing.T) {
	s := NewProgressSampler(10)

	if !s.ShouldLog(42, "enumerating") {
		t.Fatal("first event should emit")
	}
	if !s.ShouldLog(42, "processing") {
		t.Fatal("phase change should emit even at the same percent")
	}
	if s.ShouldLog(42, "processing") {
		t.Fatal("repeat event should be suppressed")
	}
}

func TestProgressSamplerUnknownPercent(t *testing.T) {
	s := NewProgressSampler(5)

	if !s.ShouldLog(-1, "finalizing") {
		t.Fatal("unknown percent with new phase should emit")
	}
	if s.ShouldLog(-1, "finalizing") {
		t.Fatal("unknown percent with unchanged phase should be suppressed")
	}
}

func TestProgressSamplerReset(t *testing.T) {
	s := NewProgressSampler(5)
	s.ShouldLog(50, "processing")
	s.Reset()
	if !s.ShouldLog(50, "processing") {
		t.Fatal("reset should allow the same event to emit again")
	}
}

func TestNilProgressSamplerAlwaysLogs(t *testing.T) {
	var s *ProgressSampler
	if !s.ShouldLog(10, "any") {
		t.Fatal("nil sampler should always log")
	}
	s.Reset()
}
