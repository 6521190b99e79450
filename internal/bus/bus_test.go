package bus

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopic(t *testing.T) {
	t.Run("delivers to all subscribers in order", func(t *testing.T) {
		var topic Topic[int]
		var got []int

		topic.Subscribe(func(v int) { got = append(got, v) })
		topic.Subscribe(func(v int) { got = append(got, v*10) })

		topic.Publish(1)
		topic.Publish(2)

		assert.Equal(t, []int{1, 10, 2, 20}, got)
	})

	t.Run("no delivery after cancel", func(t *testing.T) {
		var topic Topic[string]
		var got []string

		cancel := topic.Subscribe(func(v string) { got = append(got, v) })
		topic.Publish("before")
		cancel()
		topic.Publish("after")

		assert.Equal(t, []string{"before"}, got)
	})

	t.Run("cancel twice is harmless", func(t *testing.T) {
		var topic Topic[int]
		cancel := topic.Subscribe(func(int) {})
		cancel()
		assert.NotPanics(t, cancel)
		assert.NotPanics(t, func() { topic.Publish(1) })
	})

	t.Run("publish with no subscribers", func(t *testing.T) {
		var topic Topic[ImportCompleteEvent]
		assert.NotPanics(t, func() {
			topic.Publish(ImportCompleteEvent{TotalTransactions: 3, FilesProcessed: 1})
		})
	})

	t.Run("handler may subscribe during publish", func(t *testing.T) {
		var topic Topic[int]
		fired := false
		topic.Subscribe(func(int) {
			topic.Subscribe(func(int) { fired = true })
		})

		topic.Publish(1)
		assert.False(t, fired, "late subscriber must not see the triggering event")
		topic.Publish(2)
		assert.True(t, fired)
	})

	t.Run("concurrent publish and subscribe", func(t *testing.T) {
		var topic Topic[int]
		var mu sync.Mutex
		count := 0

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				cancel := topic.Subscribe(func(int) {
					mu.Lock()
					count++
					mu.Unlock()
				})
				defer cancel()
			}()
			go func() {
				defer wg.Done()
				topic.Publish(1)
			}()
		}
		wg.Wait()
	})
}
