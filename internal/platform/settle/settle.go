// Package settle ejecuta llamadas que nunca fallan hacia afuera: cualquier
// error (red, status, content-type, panic) se colapsa a un valor por defecto
// y queda registrado en el Result para quien quiera loguearlo.
package settle

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

type Result[T any] struct {
	Value T
	Err   error
}

// Degraded indica que Value es el default y no la respuesta real.
func (r Result[T]) Degraded() bool {
	return r.Err != nil
}

// Do corre fn y devuelve def si fn falla o entra en pánico.
func Do[T any](ctx context.Context, def T, fn func(context.Context) (T, error)) (res Result[T]) {
	defer func() {
		if p := recover(); p != nil {
			res = Result[T]{Value: def, Err: fmt.Errorf("settle: panic: %v", p)}
		}
	}()

	v, err := fn(ctx)
	if err != nil {
		return Result[T]{Value: def, Err: err}
	}
	return Result[T]{Value: v}
}

// Group junta varias llamadas Do sin cortar en el primer error.
// El zero value está listo para usarse.
type Group struct {
	eg errgroup.Group
}

// Go lanza fn dentro del grupo. El Result apuntado solo es válido después de Wait.
func Go[T any](g *Group, ctx context.Context, def T, fn func(context.Context) (T, error)) *Result[T] {
	res := &Result[T]{Value: def}
	g.eg.Go(func() error {
		*res = Do(ctx, def, fn)
		return nil
	})
	return res
}

// Wait bloquea hasta que todas las llamadas hayan terminado.
func (g *Group) Wait() {
	_ = g.eg.Wait()
}
