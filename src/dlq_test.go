package kissgate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUplinkQueue_FIFO(t *testing.T) {
	var q = NewUplinkQueue(0)

	assert.True(t, q.Append("one"))
	assert.True(t, q.Append("two"))
	assert.Equal(t, 2, q.Len())

	var line, ok = q.Remove()
	assert.True(t, ok)
	assert.Equal(t, "one", line)

	line, ok = q.Remove()
	assert.True(t, ok)
	assert.Equal(t, "two", line)

	_, ok = q.Remove()
	assert.False(t, ok)
	assert.Equal(t, 0, q.Len())
}

func TestUplinkQueue_Limit(t *testing.T) {
	var q = NewUplinkQueue(2)

	assert.True(t, q.Append("one"))
	assert.True(t, q.Append("two"))
	assert.False(t, q.Append("three"))
	assert.Equal(t, 2, q.Len())

	var line, _ = q.Remove()
	assert.Equal(t, "one", line)
	assert.True(t, q.Append("four"))
}

func TestUplinkQueue_WaitWakes(t *testing.T) {
	var q = NewUplinkQueue(0)

	var got = make(chan string)
	go func() {
		var line, err = q.Wait(context.Background())
		if err == nil {
			got <- line
		}
	}()

	time.Sleep(20 * time.Millisecond)
	q.Append("hello")

	select {
	case line := <-got:
		assert.Equal(t, "hello", line)
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return")
	}
}

func TestUplinkQueue_WaitCancelled(t *testing.T) {
	var q = NewUplinkQueue(0)
	var ctx, cancel = context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	var _, err = q.Wait(ctx)

	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestUplinkQueue_WaitAlreadyQueued(t *testing.T) {
	var q = NewUplinkQueue(0)
	q.Append("a")
	q.Append("b")

	var ctx = context.Background()
	var a, _ = q.Wait(ctx)
	var b, _ = q.Wait(ctx)

	assert.Equal(t, "a", a)
	assert.Equal(t, "b", b)
}
