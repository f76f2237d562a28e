// Package debounce entrega solo el último valor de una ráfaga, cuando pasa
// un período sin cambios. Lo usa el buscador del catálogo (500ms).
package debounce

import (
	"sync"
	"time"
)

type Debouncer[T any] struct {
	delay time.Duration
	fn    func(T)

	mu      sync.Mutex
	timer   *time.Timer
	pending T
	armed   bool
	seq     uint64
}

// New crea un debouncer que llama fn delay después del último Set.
// fn corre en la goroutine del timer.
func New[T any](delay time.Duration, fn func(T)) *Debouncer[T] {
	return &Debouncer[T]{delay: delay, fn: fn}
}

// Set reemplaza el valor pendiente y reinicia la espera.
func (d *Debouncer[T]) Set(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending = v
	d.armed = true
	d.seq++
	seq := d.seq
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() { d.fire(seq) })
}

// Flush entrega ahora el valor pendiente, si hay uno.
func (d *Debouncer[T]) Flush() {
	v, ok := d.take(0)
	if ok {
		d.fn(v)
	}
}

// Stop descarta el valor pendiente sin entregarlo.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.disarm()
}

func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.armed
}

func (d *Debouncer[T]) fire(seq uint64) {
	v, ok := d.take(seq)
	if ok {
		d.fn(v)
	}
}

// take saca el valor pendiente. seq 0 significa "cualquiera" (Flush); si no,
// un timer viejo que igual llegó a disparar no entrega nada.
func (d *Debouncer[T]) take(seq uint64) (T, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var zero T
	if !d.armed || (seq != 0 && seq != d.seq) {
		return zero, false
	}
	v := d.pending
	d.disarm()
	return v, true
}

func (d *Debouncer[T]) disarm() {
	var zero T
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = zero
	d.armed = false
	d.seq++
}
