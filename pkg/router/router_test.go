// Test Type: Unit Test
// Description: Tests for the router - layer ordering, method selection and flow control

package router_test

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/arthur-debert/fileroutes/pkg/errors"
	"github.com/arthur-debert/fileroutes/pkg/router"
	"github.com/arthur-debert/fileroutes/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFile(p, contents string) *types.File {
	return types.NewFile("fixtures", "fixtures", p, []byte(contents))
}

func mark(key string) router.Handler {
	return func(_ context.Context, f *types.File) error {
		f.Set(key, true)
		return nil
	}
}

func record(trace *[]string, name string) router.Handler {
	return func(_ context.Context, _ *types.File) error {
		*trace = append(*trace, name)
		return nil
	}
}

func TestRouter_Methods(t *testing.T) {
	r := router.New(router.WithMethods("before", "after", "whatever"))

	assert.Equal(t, []string{"all", "before", "after", "whatever"}, r.Methods())
	assert.True(t, r.HasMethod("before"))
	assert.False(t, r.HasMethod("during"))

	err := r.AddMethod("before")
	assert.True(t, errors.IsErrorCode(err, errors.ErrAlreadyExists))
}

func TestRouter_Dispatch(t *testing.T) {
	ctx := context.Background()

	t.Run("catch_all_route_matches_js", func(t *testing.T) {
		r := router.New()
		r.All(router.MustCompile(`/\.js/`), mark("middleware"))

		f := newFile("fixtures/index.js", "var foo = function() {};")
		require.NoError(t, r.Dispatch(ctx, f, ""))
		assert.Equal(t, true, f.Data["middleware"])
	})

	t.Run("non_matching_route_is_skipped", func(t *testing.T) {
		r := router.New()
		r.All(router.MustCompile("*.css"), mark("css"))

		f := newFile("fixtures/index.js", "")
		require.NoError(t, r.Dispatch(ctx, f, router.MethodAll))
		assert.NotContains(t, f.Data, "css")
	})

	t.Run("named_method_runs_its_routes_and_catch_all", func(t *testing.T) {
		r := router.New(router.WithMethods("before", "after"))
		r.Use(mark("use"))
		r.All(router.Any(), mark("all"))
		require.NoError(t, r.Handle("before", router.Any(), mark("before")))
		require.NoError(t, r.Handle("after", router.Any(), mark("after")))

		f := newFile("fixtures/one.js", "one")
		require.NoError(t, r.Dispatch(ctx, f, "before"))
		assert.Equal(t, map[string]interface{}{"use": true, "all": true, "before": true}, f.Data)
	})

	t.Run("all_dispatch_skips_named_routes", func(t *testing.T) {
		r := router.New(router.WithMethods("before"))
		require.NoError(t, r.Handle("before", router.Any(), mark("before")))
		r.All(router.Any(), mark("all"))

		f := newFile("fixtures/one.js", "one")
		require.NoError(t, r.Dispatch(ctx, f, ""))
		assert.Equal(t, map[string]interface{}{"all": true}, f.Data)
	})

	t.Run("layers_run_in_registration_order", func(t *testing.T) {
		var trace []string
		r := router.New(router.WithMethods("main"))
		r.Use(record(&trace, "use1"))
		require.NoError(t, r.Handle("main", router.Any(), record(&trace, "main1"), record(&trace, "main2")))
		r.All(router.Any(), record(&trace, "all"))
		r.Use(record(&trace, "use2"))

		require.NoError(t, r.Dispatch(ctx, newFile("a.txt", ""), "main"))
		assert.Equal(t, []string{"use1", "main1", "main2", "all", "use2"}, trace)
	})

	t.Run("unknown_method", func(t *testing.T) {
		r := router.New()
		err := r.Dispatch(ctx, newFile("a.txt", ""), "nope")
		assert.True(t, errors.IsErrorCode(err, errors.ErrUnknownMethod))
		assert.Equal(t, "nope", errors.GetErrorDetails(err)["method"])
	})

	t.Run("nil_file", func(t *testing.T) {
		r := router.New()
		err := r.Dispatch(ctx, nil, "")
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	})

	t.Run("cancelled_context", func(t *testing.T) {
		r := router.New()
		r.Use(mark("use"))

		cctx, cancel := context.WithCancel(ctx)
		cancel()
		f := newFile("a.txt", "")
		err := r.Dispatch(cctx, f, "")
		assert.ErrorIs(t, err, context.Canceled)
		assert.NotContains(t, f.Data, "use")
	})
}

func TestRouter_FlowControl(t *testing.T) {
	ctx := context.Background()

	t.Run("skip_route", func(t *testing.T) {
		var trace []string
		r := router.New()
		r.All(router.Any(),
			record(&trace, "first"),
			func(context.Context, *types.File) error { return router.SkipRoute },
			record(&trace, "skipped"),
		)
		r.All(router.Any(), record(&trace, "next-route"))

		require.NoError(t, r.Dispatch(ctx, newFile("a.txt", ""), ""))
		assert.Equal(t, []string{"first", "next-route"}, trace)
	})

	t.Run("halt", func(t *testing.T) {
		var trace []string
		r := router.New()
		r.Use(func(context.Context, *types.File) error { return router.Halt })
		r.All(router.Any(), record(&trace, "never"))

		require.NoError(t, r.Dispatch(ctx, newFile("a.txt", ""), ""))
		assert.Empty(t, trace)
	})

	t.Run("error_stops_chain", func(t *testing.T) {
		var trace []string
		boom := stderrors.New("boom")
		r := router.New()
		r.Use(func(context.Context, *types.File) error { return boom })
		r.All(router.Any(), record(&trace, "never"))

		err := r.Dispatch(ctx, newFile("a.txt", ""), "")
		assert.ErrorIs(t, err, boom)
		assert.Empty(t, trace)
	})

	t.Run("error_middleware_recovers", func(t *testing.T) {
		var trace []string
		boom := stderrors.New("boom")
		r := router.New()
		r.Use(func(context.Context, *types.File) error { return boom })
		r.All(router.Any(), record(&trace, "skipped-while-failing"))
		r.UseError(func(_ context.Context, f *types.File, err error) error {
			f.Set("recovered", err.Error())
			return nil
		})
		r.All(router.Any(), record(&trace, "after-recovery"))

		f := newFile("a.txt", "")
		require.NoError(t, r.Dispatch(ctx, f, ""))
		assert.Equal(t, []string{"after-recovery"}, trace)
		assert.Equal(t, "boom", f.Data["recovered"])
	})

	t.Run("error_middleware_replaces_error", func(t *testing.T) {
		replaced := stderrors.New("replaced")
		r := router.New()
		r.UseError(func(context.Context, *types.File, error) error { return stderrors.New("unused") })
		r.Use(func(context.Context, *types.File) error { return stderrors.New("boom") })
		r.UseError(func(context.Context, *types.File, error) error { return replaced })

		err := r.Dispatch(ctx, newFile("a.txt", ""), "")
		assert.ErrorIs(t, err, replaced)
	})
}

func TestRouter_Registration(t *testing.T) {
	r := router.New()

	err := r.Handle("before", router.Any(), mark("x"))
	assert.True(t, errors.IsErrorCode(err, errors.ErrUnknownMethod))

	err = r.Handle(router.MethodAll, nil, mark("x"))
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))

	err = r.Handle(router.MethodAll, router.Any(), nil)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))

	err = r.HandleExpr(router.MethodAll, "[", mark("x"))
	assert.True(t, errors.IsErrorCode(err, errors.ErrPattern))

	r.Use()
	r.UseError(nil)
	assert.Empty(t, r.Routes())
}

func TestRouter_Routes(t *testing.T) {
	r := router.New(router.WithMethods("before"))
	r.Use(mark("a"), mark("b"))
	require.NoError(t, r.On("before").Handle(router.MustCompile("*.md"), mark("c")))
	r.UseError(func(context.Context, *types.File, error) error { return nil })

	assert.Equal(t, []router.RouteInfo{
		{Kind: "use", Pattern: "*", Handlers: 2},
		{Kind: "route", Method: "before", Pattern: "*.md", Handlers: 1},
		{Kind: "error", Pattern: "*", Handlers: 1},
	}, r.Routes())
}

func TestRouter_Params(t *testing.T) {
	r := router.New()
	var got router.Params
	r.All(router.MustCompile(`/posts/(?P<slug>[^/]+)\.md$/`), func(ctx context.Context, _ *types.File) error {
		got = router.ParamsFrom(ctx)
		return nil
	})

	require.NoError(t, r.Dispatch(context.Background(), newFile("content/posts/hello.md", ""), ""))
	assert.Equal(t, router.Params{"slug": "hello"}, got)
	assert.Nil(t, router.ParamsFrom(context.Background()))
}
