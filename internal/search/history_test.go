package search

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHistoryBounded(t *testing.T) {
	h := NewHistory(3)
	for i := 0; i < 10; i++ {
		h.Add(fmt.Sprintf("query-%d", i))
	}

	assert.Equal(t, 3, h.Len())
	assert.Equal(t, []string{"query-9", "query-8", "query-7"}, h.Recent(0))
}

func TestHistorySkipsBlanksAndImmediateRepeats(t *testing.T) {
	h := NewHistory(10)
	h.Add("calc")
	h.Add("calc")
	h.Add("   ")
	h.Add("")
	h.Add("web")
	h.Add("calc")

	assert.Equal(t, []string{"calc", "web", "calc"}, h.Recent(0))
}

func TestHistoryRecentLimit(t *testing.T) {
	h := NewHistory(10)
	h.Add("a")
	h.Add("b")
	h.Add("c")

	assert.Equal(t, []string{"c", "b"}, h.Recent(2))
	assert.Equal(t, []string{"c", "b", "a"}, h.Recent(99))
}
