package models

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundedLog_EvictsOldestFirst(t *testing.T) {
	l := NewBoundedLog[int](200, nil)
	for i := 0; i < 250; i++ {
		l.Append(i)
		assert.LessOrEqual(t, l.Len(), 200)
	}

	entries := l.Entries()
	require.Len(t, entries, 200)
	assert.Equal(t, 50, entries[0])
	assert.Equal(t, 249, entries[199])
}

func TestBoundedLog_InitialIsTruncatedAndCopied(t *testing.T) {
	initial := []string{"a", "b", "c", "d"}
	l := NewBoundedLog(3, initial)

	assert.Equal(t, []string{"b", "c", "d"}, l.Entries())
	initial[3] = "z"
	assert.Equal(t, "d", l.Entries()[2])
}

func TestBoundedLog_EntriesIsACopy(t *testing.T) {
	l := NewBoundedLog(5, []int{1, 2})
	e := l.Entries()
	e[0] = 99
	assert.Equal(t, 1, l.Entries()[0])
}

func TestBoundedLog_NonPositiveLimit(t *testing.T) {
	l := NewBoundedLog[int](0, nil)
	l.Append(1, 2, 3)
	assert.Equal(t, []int{3}, l.Entries())
}

func TestBoundedLog_ConcurrentAppend(t *testing.T) {
	l := NewBoundedLog[int](100, nil)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				l.Append(i)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 100, l.Len())
}
