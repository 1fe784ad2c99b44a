package store

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"cognisense-backend/internal/models"
)

func record(userID, url string) models.EnrichedRecord {
	return models.EnrichedRecord{ActivityEvent: models.ActivityEvent{UserID: userID, URL: url}}
}

func TestRecent_ReturnsTailInArrivalOrder(t *testing.T) {
	s := NewActivityStore()
	for i := 0; i < 5; i++ {
		s.Append(record("u1", fmt.Sprintf("https://site/%d", i)))
	}

	items, total := s.Recent("u1", 2)

	assert.Equal(t, 5, total)
	assert.Len(t, items, 2)
	assert.Equal(t, "https://site/3", items[0].URL)
	assert.Equal(t, "https://site/4", items[1].URL)
}

func TestRecent_ReturnsCopy(t *testing.T) {
	s := NewActivityStore()
	s.Append(record("u1", "https://a"))

	items, _ := s.Recent("u1", 10)
	items[0].URL = "mutated"

	again, _ := s.Recent("u1", 10)
	assert.Equal(t, "https://a", again[0].URL)
}

func TestClear(t *testing.T) {
	s := NewActivityStore()
	s.Append(record("u1", "https://a"))
	s.Append(record("u1", "https://b"))
	s.Append(record("u2", "https://c"))

	assert.Equal(t, 2, s.Clear("u1"))
	assert.Equal(t, 0, s.Clear("u1"))
	assert.Equal(t, 0, s.Clear("nobody"))
	assert.Equal(t, 1, s.Count("u2"))
}

func TestAppend_Concurrent(t *testing.T) {
	s := NewActivityStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Append(record("u1", fmt.Sprintf("https://site/%d", i)))
			_, _ = s.Recent("u1", 5)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, s.Count("u1"))
	assert.Len(t, s.All("u1"), 50)
}
