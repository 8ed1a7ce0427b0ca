package audio

import (
	"sync/atomic"
)

// Resource значение, которое может быть еще не загружено. Загрузка идет
// в фоне, кадровый цикл только опрашивает Get и никогда не ждет.
type Resource[T any] struct {
	name  string
	value atomic.Pointer[T]
	err   atomic.Pointer[error]
	done  chan struct{}

	warned atomic.Bool
}

// NewResource создает пустой ресурс
func NewResource[T any](name string) *Resource[T] {
	return &Resource[T]{name: name, done: make(chan struct{})}
}

// Ready создает уже загруженный ресурс
func Ready[T any](name string, v *T) *Resource[T] {
	r := NewResource[T](name)
	r.value.Store(v)
	close(r.done)
	return r
}

// LoadAsync запускает загрузку в отдельной горутине
func (r *Resource[T]) LoadAsync(load func() (*T, error)) {
	go func() {
		defer close(r.done)
		v, err := load()
		if err != nil {
			r.err.Store(&err)
			return
		}
		r.value.Store(v)
	}()
}

// Get возвращает значение, если оно уже готово
func (r *Resource[T]) Get() (*T, bool) {
	v := r.value.Load()
	return v, v != nil
}

// Err возвращает ошибку загрузки, если она была
func (r *Resource[T]) Err() error {
	if e := r.err.Load(); e != nil {
		return *e
	}
	return nil
}

// Done закрывается, когда загрузка завершилась успехом или ошибкой
func (r *Resource[T]) Done() <-chan struct{} {
	return r.done
}

// Name возвращает имя ресурса для логов
func (r *Resource[T]) Name() string {
	return r.name
}

// WarnOnce возвращает true только при первом вызове
func (r *Resource[T]) WarnOnce() bool {
	return r.warned.CompareAndSwap(false, true)
}
