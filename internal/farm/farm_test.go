package farm

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func setupTestLimiter(t *testing.T, maxScore, costPerJob int) (*Limiter, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run: %v", err)
	}

	l, err := NewLimiter(mr.Addr(), 0, "test", maxScore, costPerJob, time.Minute)
	if err != nil {
		mr.Close()
		t.Fatalf("NewLimiter: %v", err)
	}

	return l, mr
}

func TestAllowUnderBudget(t *testing.T) {
	l, mr := setupTestLimiter(t, 10, 1)
	defer mr.Close()
	defer l.Close()

	for i := 0; i < 10; i++ {
		ok, err := l.Allow(1)
		if err != nil {
			t.Fatalf("Allow: %v", err)
		}
		if !ok {
			t.Fatalf("Allow should permit submission %d of 10 under a budget of 10", i+1)
		}
	}
}

func TestAllowRejectsOverBudget(t *testing.T) {
	l, mr := setupTestLimiter(t, 3, 1)
	defer mr.Close()
	defer l.Close()

	for i := 0; i < 3; i++ {
		if ok, err := l.Allow(2); err != nil || !ok {
			t.Fatalf("Allow(2) call %d: ok=%v err=%v", i, ok, err)
		}
	}

	ok, err := l.Allow(2)
	if err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if ok {
		t.Fatal("Allow should reject once score exceeds max")
	}
}

func TestScoreTracksDeviceIndependently(t *testing.T) {
	l, mr := setupTestLimiter(t, 100, 5)
	defer mr.Close()
	defer l.Close()

	l.Allow(1)
	l.Allow(1)
	l.Allow(9)

	scoreOne, err := l.Score(1)
	if err != nil {
		t.Fatalf("Score(1): %v", err)
	}
	if scoreOne != 10 {
		t.Errorf("Score(1) = %d, want 10", scoreOne)
	}

	scoreNine, err := l.Score(9)
	if err != nil {
		t.Fatalf("Score(9): %v", err)
	}
	if scoreNine != 5 {
		t.Errorf("Score(9) = %d, want 5", scoreNine)
	}
}

func TestScoreUnknownDeviceIsZero(t *testing.T) {
	l, mr := setupTestLimiter(t, 100, 1)
	defer mr.Close()
	defer l.Close()

	score, err := l.Score(42)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if score != 0 {
		t.Errorf("Score(42) = %d, want 0", score)
	}
}

func TestResetClearsScore(t *testing.T) {
	l, mr := setupTestLimiter(t, 100, 5)
	defer mr.Close()
	defer l.Close()

	l.Allow(3)
	if err := l.Reset(3); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	score, err := l.Score(3)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if score != 0 {
		t.Errorf("Score(3) after Reset = %d, want 0", score)
	}
}
