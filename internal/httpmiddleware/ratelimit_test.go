package httpmiddleware

import (
	"testing"
	"time"
)

func TestTokenBucket_AllowsBurstThenBlocks(t *testing.T) {
	l := NewTokenBucket(3, 60)
	now := time.Now()

	for i := 0; i < 3; i++ {
		if !l.allow("10.0.0.1", now) {
			t.Fatalf("request %d inside the burst should pass", i+1)
		}
	}
	if l.allow("10.0.0.1", now) {
		t.Error("request beyond capacity should be blocked")
	}
	// A different client has its own bucket.
	if !l.allow("10.0.0.2", now) {
		t.Error("second client should not share the first client's bucket")
	}
}

func TestTokenBucket_RefillsOverTime(t *testing.T) {
	l := NewTokenBucket(1, 60)
	now := time.Now()

	if !l.allow("10.0.0.1", now) {
		t.Fatal("first request should pass")
	}
	if l.allow("10.0.0.1", now) {
		t.Fatal("bucket should be empty")
	}
	// 60/min refills one token per second.
	if !l.allow("10.0.0.1", now.Add(2*time.Second)) {
		t.Error("bucket should have refilled after two seconds")
	}
}
