package attendance

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"attendcli/pkg/contracts/domain"
)

func TestCollectorConcurrentAppend(t *testing.T) {
	c := NewCollector()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.AddRecords(domain.AttendeeRecord{Email: fmt.Sprintf("p%d@x.org", i)})
			c.Warn(NewLineWarning("a.pdf", i, "line"))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 20, c.Len())
	assert.Len(t, c.Records(), 20)
	assert.Len(t, c.Warnings(), 20)
}

func TestCollectorReturnsCopies(t *testing.T) {
	c := NewCollector()
	c.AddRecords(domain.AttendeeRecord{Email: "a@x.org"})

	records := c.Records()
	records[0].Email = "changed@x.org"

	assert.Equal(t, "a@x.org", c.Records()[0].Email)
}

func TestWarnings(t *testing.T) {
	w := NewDocumentWarning("b.pdf", errors.New("EOF"))
	assert.Equal(t, LevelDocument, w.Level)
	assert.Equal(t, "Could not process b.pdf: EOF", w.String())

	w = NewLineWarning("a.pdf", 7, "x@y.org Present")
	assert.Equal(t, LevelLine, w.Level)
	assert.Equal(t, 7, w.LineNumber)
	assert.Equal(t, "Could not parse name data for line: x@y.org Present", w.String())
}
