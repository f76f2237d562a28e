package query

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/farmasanti/tienda/internal/apierr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuery_InitialState(t *testing.T) {
	q := New(func(ctx context.Context, s string) ([]string, error) { return nil, nil })
	st := q.State()
	assert.Equal(t, Idle, st.Status)
	assert.False(t, st.Loading)
	assert.Nil(t, st.Err)
	assert.Nil(t, st.Data)
}

func TestQuery_Success(t *testing.T) {
	q := New(func(ctx context.Context, s string) ([]string, error) {
		return []string{"a", s}, nil
	})

	got, err := q.Fetch(context.Background(), "b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)

	st := q.State()
	assert.Equal(t, Success, st.Status)
	assert.False(t, st.Loading)
	assert.Nil(t, st.Err)
	assert.Equal(t, []string{"a", "b"}, st.Data)
}

func TestQuery_FailureClearsData(t *testing.T) {
	fail := false
	q := New(func(ctx context.Context, _ struct{}) ([]int, error) {
		if fail {
			return nil, apierr.New(404, "Producto no encontrado")
		}
		return []int{1, 2}, nil
	})

	_, err := q.Fetch(context.Background(), struct{}{})
	require.NoError(t, err)
	require.Equal(t, []int{1, 2}, q.State().Data)

	fail = true
	_, err = q.Fetch(context.Background(), struct{}{})
	require.Error(t, err)

	st := q.State()
	assert.Equal(t, Failure, st.Status)
	assert.False(t, st.Loading)
	assert.Nil(t, st.Data)
	require.NotNil(t, st.Err)
	assert.Equal(t, 404, st.Err.Status)
	assert.Equal(t, "Producto no encontrado", st.Err.Message)
}

func TestQuery_RawErrorUsesFallback(t *testing.T) {
	q := New(func(ctx context.Context, _ int) (int, error) {
		return 0, errors.New("boom")
	})
	_, err := q.Fetch(context.Background(), 0)
	assert.Equal(t, DefaultFallback, q.State().Err.Message)
	assert.Equal(t, http.StatusInternalServerError, apierr.StatusOf(err))

	q.WithFallback("Error al listar categorías")
	_, _ = q.Fetch(context.Background(), 0)
	assert.Equal(t, "Error al listar categorías", q.State().Err.Message)
}

func TestQuery_LoadingClearsPreviousError(t *testing.T) {
	release := make(chan struct{})
	calls := 0
	q := New(func(ctx context.Context, _ int) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("primera falla")
		}
		<-release
		return "ok", nil
	})

	_, _ = q.Fetch(context.Background(), 0)
	require.Equal(t, Failure, q.State().Status)

	done := q.Go(context.Background(), 0)
	st := q.State()
	assert.Equal(t, Loading, st.Status)
	assert.True(t, st.Loading)
	assert.Nil(t, st.Err)
	assert.Empty(t, st.Data)

	close(release)
	<-done
	assert.Equal(t, "ok", q.State().Data)
}

// A se emite primero y termina después de B: el estado debe quedar con B.
func TestQuery_LastIssuedWins(t *testing.T) {
	releaseA := make(chan struct{})
	q := New(func(ctx context.Context, filtro string) (string, error) {
		if filtro == "A" {
			<-releaseA
			return "datos A", nil
		}
		return "datos B", nil
	})

	doneA := q.Go(context.Background(), "A")
	resB, err := q.Fetch(context.Background(), "B")
	require.NoError(t, err)
	assert.Equal(t, "datos B", resB)

	close(releaseA)
	<-doneA

	st := q.State()
	assert.Equal(t, Success, st.Status)
	assert.Equal(t, "datos B", st.Data)
	assert.Equal(t, uint64(2), st.Generation)
}

func TestQuery_SupersededCallIsCancelled(t *testing.T) {
	cancelled := make(chan error, 1)
	q := New(func(ctx context.Context, n int) (int, error) {
		if n == 1 {
			<-ctx.Done()
			cancelled <- ctx.Err()
			return 0, ctx.Err()
		}
		return n, nil
	})

	done := q.Go(context.Background(), 1)
	_, err := q.Fetch(context.Background(), 2)
	require.NoError(t, err)

	select {
	case err := <-cancelled:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("superseded fetch was not cancelled")
	}
	<-done

	st := q.State()
	assert.Equal(t, Success, st.Status)
	assert.Equal(t, 2, st.Data)
}

func TestQuery_ManyConcurrentGoKeepsLast(t *testing.T) {
	q := New(func(ctx context.Context, n int) (int, error) {
		// los primeros tardan más
		select {
		case <-time.After(time.Duration(20-n) * time.Millisecond):
		case <-ctx.Done():
		}
		return n, nil
	})

	var dones []<-chan struct{}
	for i := 0; i < 20; i++ {
		dones = append(dones, q.Go(context.Background(), i))
	}
	for _, d := range dones {
		<-d
	}
	assert.Equal(t, 19, q.State().Data)
	assert.Equal(t, Success, q.State().Status)
}

func TestQuery_OnChange(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	q := New(func(ctx context.Context, n int) (int, error) {
		if n < 0 {
			return 0, fmt.Errorf("negativo")
		}
		return n, nil
	}).WithOnChange(func(s State[int]) {
		mu.Lock()
		seen = append(seen, s.Status.String())
		mu.Unlock()
	})

	_, _ = q.Fetch(context.Background(), 1)
	_, _ = q.Fetch(context.Background(), -1)
	q.Reset()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"loading", "success", "loading", "failure", "idle"}, seen)
}

func TestQuery_ResetDropsInFlightResult(t *testing.T) {
	release := make(chan struct{})
	q := New(func(ctx context.Context, s string) (string, error) {
		<-release
		return s, nil
	})

	done := q.Go(context.Background(), "viejo")
	require.Eventually(t, func() bool { return q.State().Loading }, time.Second, 5*time.Millisecond)
	q.Reset()
	close(release)
	<-done

	st := q.State()
	assert.Equal(t, Idle, st.Status)
	assert.False(t, st.Loading)
	assert.Empty(t, st.Data)
}

func TestQuery_OnChangeCanTriggerAnotherFetch(t *testing.T) {
	q := New(func(ctx context.Context, s string) (string, error) { return s, nil })

	var refetched bool
	q.WithOnChange(func(st State[string]) {
		if st.Status == Success && st.Data == "a" && !refetched {
			refetched = true
			q.Go(context.Background(), "b")
		}
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = q.Fetch(context.Background(), "a")
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Fetch no retornó: el observador quedó bloqueado")
	}

	require.Eventually(t, func() bool {
		st := q.State()
		return st.Status == Success && st.Data == "b"
	}, time.Second, 5*time.Millisecond)
}

func TestMutation_ReturnsValueToCaller(t *testing.T) {
	m := NewMutation(func(ctx context.Context, token string) (string, error) {
		if token == "" {
			return "", apierr.New(400, "token requerido")
		}
		return "backend-" + token, nil
	}).Named("login")

	tok, err := m.Mutate(context.Background(), "firebase")
	require.NoError(t, err)
	assert.Equal(t, "backend-firebase", tok)
	assert.Equal(t, Success, m.State().Status)

	_, err = m.Mutate(context.Background(), "")
	var ne *apierr.Error
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, "token requerido", ne.Message)
	assert.Equal(t, Failure, m.State().Status)

	m.Reset()
	assert.Equal(t, Idle, m.State().Status)
}
