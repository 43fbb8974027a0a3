package registry

import (
	"testing"

	"github.com/handshake-org/hs-miner-go/internal/errcode"
	"github.com/handshake-org/hs-miner-go/internal/header"
	"github.com/handshake-org/hs-miner-go/internal/search"
)

func testJob() *search.Job {
	h := &header.Header{}
	return search.NewJob(h, 0, 1000, [32]byte{}, 1, 0, 0, "simple")
}

func TestInsertFindRemove(t *testing.T) {
	r := New()
	job := testJob()

	if code := r.Insert(5, job); code != errcode.SUCCESS {
		t.Fatalf("Insert: got %v, want SUCCESS", code)
	}

	found, ok := r.Find(5)
	if !ok || found != job {
		t.Fatalf("Find(5) = %v, %v; want job, true", found, ok)
	}

	r.Remove(5)
	if _, ok := r.Find(5); ok {
		t.Fatal("expected job to be gone after Remove")
	}
}

func TestInsertDuplicateDeviceRejected(t *testing.T) {
	r := New()
	if code := r.Insert(1, testJob()); code != errcode.SUCCESS {
		t.Fatalf("first Insert: got %v, want SUCCESS", code)
	}
	if code := r.Insert(1, testJob()); code != errcode.EMAXLOAD {
		t.Fatalf("second Insert: got %v, want EMAXLOAD", code)
	}
}

func TestStopSignalsJobAndReportsFound(t *testing.T) {
	r := New()
	job := testJob()
	r.Insert(2, job)

	if !r.Stop(2) {
		t.Fatal("Stop(2) = false, want true")
	}
	if job.Running() {
		t.Error("job should no longer be running after Stop")
	}
	if r.Stop(99) {
		t.Error("Stop on unknown device should return false")
	}
}

func TestStopAllSignalsEveryJob(t *testing.T) {
	r := New()
	jobs := []*search.Job{testJob(), testJob(), testJob()}
	for i, j := range jobs {
		r.Insert(uint32(i), j)
	}

	if !r.StopAll() {
		t.Fatal("StopAll on non-empty registry should return true")
	}
	for i, j := range jobs {
		if j.Running() {
			t.Errorf("job %d still running after StopAll", i)
		}
	}

	r2 := New()
	if r2.StopAll() {
		t.Error("StopAll on empty registry should return false")
	}
}

func TestNextSyntheticDeviceMonotonicAndTagged(t *testing.T) {
	r := New()
	first := r.NextSyntheticDevice()
	second := r.NextSyntheticDevice()

	if first&cpuDeviceBit == 0 || second&cpuDeviceBit == 0 {
		t.Fatal("synthetic device ids must carry the CPU high bit")
	}
	if second <= first {
		t.Errorf("expected monotonically increasing ids, got %d then %d", first, second)
	}
	if first&^cpuDeviceBit != 1 || second&^cpuDeviceBit != 2 {
		t.Errorf("unexpected counter values: %d, %d", first&^cpuDeviceBit, second&^cpuDeviceBit)
	}
}

func TestLenTracksInsertsAndRemoves(t *testing.T) {
	r := New()
	if r.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", r.Len())
	}
	r.Insert(1, testJob())
	r.Insert(2, testJob())
	if r.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", r.Len())
	}
	r.Remove(1)
	if r.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", r.Len())
	}
}
