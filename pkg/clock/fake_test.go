package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeAfter(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	fake := NewFake(start)

	ch := fake.After(30 * time.Second)
	select {
	case <-ch:
		t.Fatal("timer fired before Advance")
	default:
	}

	fake.Advance(29 * time.Second)
	select {
	case <-ch:
		t.Fatal("timer fired too early")
	default:
	}

	fake.Advance(1 * time.Second)
	select {
	case at := <-ch:
		assert.Equal(t, start.Add(30*time.Second), at)
	default:
		t.Fatal("timer did not fire at its deadline")
	}
}

func TestFakeAfterNonPositive(t *testing.T) {
	fake := NewFake(time.Unix(0, 0))
	select {
	case <-fake.After(0):
	default:
		t.Fatal("zero-duration timer should fire immediately")
	}
}

func TestFakeTicker(t *testing.T) {
	fake := NewFake(time.Unix(1000, 0))
	ticker := fake.NewTicker(time.Second)
	defer ticker.Stop()

	fake.Advance(3 * time.Second)

	ticks := 0
	for {
		select {
		case <-ticker.C():
			ticks++
			continue
		default:
		}
		break
	}
	require.Equal(t, 3, ticks)

	ticker.Stop()
	fake.Advance(5 * time.Second)
	select {
	case <-ticker.C():
		t.Fatal("stopped ticker must not tick")
	default:
	}
}

func TestFakeNowAdvances(t *testing.T) {
	start := time.Unix(500, 0)
	fake := NewFake(start)
	fake.Advance(90 * time.Second)
	assert.Equal(t, start.Add(90*time.Second), fake.Now())
}
