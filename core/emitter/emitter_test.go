package emitter

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmitter(t *testing.T) {
	t.Run("listeners run in registration order", func(t *testing.T) {
		em := New()
		var order []string
		em.On("x", func(any) { order = append(order, "first") })
		em.On("x", func(any) { order = append(order, "second") })

		em.Emit("x", nil)
		assert.Equal(t, []string{"first", "second"}, order)
	})

	t.Run("payload reaches the listener", func(t *testing.T) {
		em := New()
		var got any
		em.On("books.create", func(data any) { got = data })

		em.Emit("books.create", 42)
		assert.Equal(t, 42, got)
	})

	t.Run("unrelated events are ignored", func(t *testing.T) {
		em := New()
		called := false
		em.On("a", func(any) { called = true })

		em.Emit("b", nil)
		assert.False(t, called)
	})

	t.Run("concurrent emit and subscribe", func(t *testing.T) {
		em := New()
		em.On("tick", func(any) {})

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				em.Emit("tick", nil)
			}()
			go func() {
				defer wg.Done()
				em.On("tick", func(any) {})
			}()
		}
		wg.Wait()
	})
}
