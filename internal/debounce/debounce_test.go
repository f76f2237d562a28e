package debounce

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu   sync.Mutex
	vals []string
	ch   chan struct{}
}

func newRecorder() *recorder { return &recorder{ch: make(chan struct{}, 16)} }

func (r *recorder) add(v string) {
	r.mu.Lock()
	r.vals = append(r.vals, v)
	r.mu.Unlock()
	r.ch <- struct{}{}
}

func (r *recorder) values() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.vals...)
}

func TestDebounce_DeliversOnlyLastValue(t *testing.T) {
	rec := newRecorder()
	d := New(40*time.Millisecond, rec.add)

	for _, v := range []string{"a", "as", "asp", "aspi", "aspirin"} {
		d.Set(v)
		time.Sleep(5 * time.Millisecond)
	}
	assert.True(t, d.Pending())

	select {
	case <-rec.ch:
	case <-time.After(time.Second):
		t.Fatal("value never delivered")
	}
	time.Sleep(80 * time.Millisecond)

	assert.Equal(t, []string{"aspirin"}, rec.values())
	assert.False(t, d.Pending())
}

func TestDebounce_WaitsForQuietPeriod(t *testing.T) {
	rec := newRecorder()
	d := New(60*time.Millisecond, rec.add)

	start := time.Now()
	d.Set("x")
	time.Sleep(30 * time.Millisecond)
	d.Set("y")

	select {
	case <-rec.ch:
	case <-time.After(time.Second):
		t.Fatal("value never delivered")
	}
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
	assert.Equal(t, []string{"y"}, rec.values())
}

func TestDebounce_FlushAndStop(t *testing.T) {
	rec := newRecorder()
	d := New(time.Hour, rec.add)

	d.Set("ahora")
	d.Flush()
	require.Equal(t, []string{"ahora"}, rec.values())

	d.Flush()
	assert.Len(t, rec.values(), 1)

	d.Set("nunca")
	d.Stop()
	assert.False(t, d.Pending())
	d.Flush()
	assert.Equal(t, []string{"ahora"}, rec.values())
}
