// Copyright 2026 The Pianobot Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"testing"
	"time"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFakeAfterFiresOnlyWhenDue(t *testing.T) {
	fake := Fake(epoch)
	channel := fake.After(2 * time.Second)

	fake.Advance(time.Second)
	select {
	case <-channel:
		t.Fatal("timer fired one second early")
	default:
	}

	fake.Advance(time.Second)
	select {
	case fired := <-channel:
		if !fired.Equal(epoch.Add(2 * time.Second)) {
			t.Errorf("fired at %v, want %v", fired, epoch.Add(2*time.Second))
		}
	default:
		t.Fatal("timer did not fire when due")
	}
	if count := fake.PendingCount(); count != 0 {
		t.Errorf("PendingCount = %d after firing, want 0", count)
	}
}

func TestFakeAfterNonPositive(t *testing.T) {
	fake := Fake(epoch)
	select {
	case <-fake.After(0):
	default:
		t.Fatal("After(0) did not deliver immediately")
	}
	if count := fake.PendingCount(); count != 0 {
		t.Errorf("PendingCount = %d, want 0", count)
	}
}

func TestFakeTickerReschedules(t *testing.T) {
	fake := Fake(epoch)
	ticker := fake.NewTicker(20 * time.Second)

	for round := 1; round <= 3; round++ {
		fake.Advance(20 * time.Second)
		select {
		case <-ticker.C:
		default:
			t.Fatalf("round %d: no tick", round)
		}
	}

	ticker.Stop()
	fake.Advance(time.Minute)
	select {
	case <-ticker.C:
		t.Fatal("tick delivered after Stop")
	default:
	}
}

func TestFakeWaitForTimers(t *testing.T) {
	fake := Fake(epoch)
	done := make(chan struct{})
	go func() {
		<-fake.After(5 * time.Second)
		close(done)
	}()

	fake.WaitForTimers(1)
	fake.Advance(5 * time.Second)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("goroutine never observed the timer")
	}
}

func TestRealNow(t *testing.T) {
	before := time.Now()
	now := Real().Now()
	if now.Before(before) {
		t.Errorf("Real().Now() = %v, earlier than %v", now, before)
	}
}
