// Package query modela una fuente de datos asincrónica con estado
// loading/error/data, al estilo de un hook de fetch.
//
// Cada Fetch recibe un número de generación. Solo el fetch más reciente puede
// escribir el estado: si un fetch anterior termina después, su resultado se
// descarta (gana el último emitido, no el último en llegar). Además el
// contexto del fetch reemplazado se cancela.
package query

import (
	"context"
	"sync"

	"github.com/farmasanti/tienda/internal/apierr"
	"github.com/farmasanti/tienda/internal/metrics"
	"github.com/farmasanti/tienda/internal/observability/logger"
)

// DefaultFallback es el mensaje para errores que nadie normalizó antes.
const DefaultFallback = "Error inesperado"

type Status int

const (
	Idle Status = iota
	Loading
	Success
	Failure
)

func (s Status) String() string {
	switch s {
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Failure:
		return "failure"
	default:
		return "idle"
	}
}

// State es la foto del query. Loading implica Err == nil; al terminar, Data
// solo es válido con Success y Err solo con Failure.
type State[T any] struct {
	Status     Status
	Data       T
	Err        *apierr.Error
	Loading    bool
	Generation uint64
}

// Func es la operación asincrónica (normalmente un método de services).
type Func[A, T any] func(ctx context.Context, arg A) (T, error)

type Query[A, T any] struct {
	fn       Func[A, T]
	name     string
	fallback string

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	state  State[T]

	notifyMu   sync.Mutex
	onChange   func(State[T])
	pending    bool
	delivering bool
}

func New[A, T any](fn func(context.Context, A) (T, error)) *Query[A, T] {
	return &Query[A, T]{fn: fn, fallback: DefaultFallback}
}

// Named le pone nombre al query para los logs.
func (q *Query[A, T]) Named(name string) *Query[A, T] {
	q.name = name
	return q
}

// WithFallback cambia el mensaje usado cuando el error no viene normalizado.
func (q *Query[A, T]) WithFallback(msg string) *Query[A, T] {
	q.fallback = msg
	return q
}

// WithOnChange registra un observador que se llama después de cada transición
// con el estado vigente en ese momento. No debe bloquear. Puede volver a
// llamar al query (Go, Fetch, Reset): la entrega que eso dispara sale cuando
// el observador retorna.
func (q *Query[A, T]) WithOnChange(fn func(State[T])) *Query[A, T] {
	q.notifyMu.Lock()
	q.onChange = fn
	q.notifyMu.Unlock()
	return q
}

// State devuelve una copia del estado actual.
func (q *Query[A, T]) State() State[T] {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}

// Fetch ejecuta la operación y espera el resultado. El llamador siempre recibe
// su propio resultado, aunque el estado ya pertenezca a un fetch posterior.
func (q *Query[A, T]) Fetch(ctx context.Context, arg A) (T, error) {
	run := q.begin(ctx)
	return q.settle(run, arg)
}

// Go dispara el fetch en background. La generación se asigna antes de
// retornar, así dos Go seguidos respetan el orden en que se llamaron.
// El canal se cierra cuando el fetch termina.
func (q *Query[A, T]) Go(ctx context.Context, arg A) <-chan struct{} {
	run := q.begin(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = q.settle(run, arg)
	}()
	return done
}

// Reset cancela lo que esté en vuelo y vuelve a Idle.
func (q *Query[A, T]) Reset() {
	q.mu.Lock()
	q.gen++
	if q.cancel != nil {
		q.cancel()
		q.cancel = nil
	}
	q.state = State[T]{Generation: q.gen}
	q.mu.Unlock()
	q.notify()
}

type run struct {
	ctx    context.Context
	cancel context.CancelFunc
	gen    uint64
}

func (q *Query[A, T]) begin(ctx context.Context) run {
	cctx, cancel := context.WithCancel(ctx)

	q.mu.Lock()
	q.gen++
	gen := q.gen
	if q.cancel != nil {
		q.cancel()
	}
	q.cancel = cancel
	// Data se limpia: mientras carga no se muestra el resultado de otros filtros.
	q.state = State[T]{Status: Loading, Loading: true, Generation: gen}
	q.mu.Unlock()

	q.notify()
	return run{ctx: cctx, cancel: cancel, gen: gen}
}

func (q *Query[A, T]) settle(r run, arg A) (T, error) {
	res, err := q.fn(r.ctx, arg)
	r.cancel()

	var nerr *apierr.Error
	if err != nil {
		nerr = apierr.Normalize(err, q.fallback)
	}

	q.mu.Lock()
	if r.gen != q.gen {
		q.mu.Unlock()
		metrics.QueryStaleResultsTotal.Inc()
		logger.From(r.ctx).Debug("query result discarded",
			logger.Layer("query"), logger.Component(q.name), logger.Generation(r.gen))
		if nerr != nil {
			var zero T
			return zero, nerr
		}
		return res, nil
	}
	q.cancel = nil
	if nerr != nil {
		q.state = State[T]{Status: Failure, Err: nerr, Generation: r.gen}
	} else {
		q.state = State[T]{Status: Success, Data: res, Generation: r.gen}
	}
	q.mu.Unlock()
	q.notify()

	if nerr != nil {
		var zero T
		return zero, nerr
	}
	return res, nil
}

// notify entrega el estado vigente (no el de la transición) para que un
// observador nunca vea una foto más vieja que la anterior. Hay un solo
// entregador a la vez y el observador corre sin notifyMu tomado; lo que
// cambie mientras tanto queda pendiente y se entrega en la vuelta siguiente.
func (q *Query[A, T]) notify() {
	q.notifyMu.Lock()
	q.pending = true
	if q.delivering {
		q.notifyMu.Unlock()
		return
	}
	q.delivering = true
	for q.pending {
		q.pending = false
		fn := q.onChange
		q.notifyMu.Unlock()
		if fn != nil {
			fn(q.State())
		}
		q.notifyMu.Lock()
	}
	q.delivering = false
	q.notifyMu.Unlock()
}

// Mutation es un Query pensado para operaciones que escriben (login, registro).
// El llamador usa el valor devuelto por Mutate directamente.
type Mutation[A, T any] struct {
	q *Query[A, T]
}

func NewMutation[A, T any](fn func(context.Context, A) (T, error)) *Mutation[A, T] {
	return &Mutation[A, T]{q: New[A, T](fn)}
}

func (m *Mutation[A, T]) Named(name string) *Mutation[A, T] {
	m.q.Named(name)
	return m
}

func (m *Mutation[A, T]) WithFallback(msg string) *Mutation[A, T] {
	m.q.WithFallback(msg)
	return m
}

func (m *Mutation[A, T]) Mutate(ctx context.Context, arg A) (T, error) {
	return m.q.Fetch(ctx, arg)
}

func (m *Mutation[A, T]) State() State[T] { return m.q.State() }

func (m *Mutation[A, T]) Reset() { m.q.Reset() }
