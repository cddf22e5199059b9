// Test Type: Unit Test
// Description: Tests for the built-in actions - pure logic, no filesystem

package actions_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/arthur-debert/fileroutes/pkg/actions"
	"github.com/arthur-debert/fileroutes/pkg/errors"
	"github.com/arthur-debert/fileroutes/pkg/router"
	"github.com/arthur-debert/fileroutes/pkg/types"
	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, name string, opts map[string]interface{}, f *types.File) error {
	t.Helper()
	h, err := actions.Build(name, opts)
	require.NoError(t, err)
	return h(context.Background(), f)
}

func newFile(contents string) *types.File {
	return types.NewFile("/w", "/w/src", "/w/src/docs/page.md", []byte(contents))
}

func TestBuiltinsRegistered(t *testing.T) {
	names := actions.Names()
	for _, n := range []string{"set", "frontmatter", "extname", "checksum", "prepend", "append", "fail"} {
		assert.Contains(t, names, n)
	}
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name   string
		action string
		opts   map[string]interface{}
	}{
		{"unknown_action", "nope", nil},
		{"set_without_key", "set", nil},
		{"extname_without_ext", "extname", map[string]interface{}{}},
		{"unused_option", "prepend", map[string]interface{}{"text": "x", "bogus": 1}},
		{"wrong_type", "frontmatter", map[string]interface{}{"strip": map[string]interface{}{"a": 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := actions.Build(tt.action, tt.opts)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrActionInvalid))
		})
	}
}

func TestSet(t *testing.T) {
	f := newFile("")
	require.NoError(t, run(t, "set", map[string]interface{}{"key": "middleware"}, f))
	v, ok := f.Get("middleware")
	assert.True(t, ok)
	assert.Equal(t, true, v)

	require.NoError(t, run(t, "set", map[string]interface{}{"key": "layout", "value": "post"}, f))
	assert.Equal(t, "post", f.Data["layout"])
}

func TestSet_ValuesAreNotShared(t *testing.T) {
	h, err := actions.Build("set", map[string]interface{}{
		"key":   "meta",
		"value": map[string]interface{}{"a": 1, "tags": []interface{}{"x"}},
	})
	require.NoError(t, err)

	one := types.NewFile("/w", "/w/src", "/w/src/one.md", nil)
	two := types.NewFile("/w", "/w/src", "/w/src/two.md", nil)
	require.NoError(t, h(context.Background(), one))
	require.NoError(t, h(context.Background(), two))

	meta := one.Data["meta"].(map[string]interface{})
	meta["touched"] = true
	meta["tags"].([]interface{})[0] = "y"

	assert.Equal(t, map[string]interface{}{"a": 1, "tags": []interface{}{"x"}}, two.Data["meta"])
}

func TestFrontMatter(t *testing.T) {
	t.Run("merge_and_strip", func(t *testing.T) {
		f := newFile("---\ntitle: Hi\n---\nbody")
		require.NoError(t, run(t, "frontmatter", nil, f))
		assert.Equal(t, "Hi", f.Data["title"])
		assert.Equal(t, "body", string(f.Contents))
	})

	t.Run("namespaced_without_strip", func(t *testing.T) {
		input := "+++\ntitle = \"Hi\"\n+++\nbody"
		f := newFile(input)
		require.NoError(t, run(t, "frontmatter", map[string]interface{}{"key": "page", "strip": "false"}, f))
		assert.Equal(t, map[string]interface{}{"title": "Hi"}, f.Data["page"])
		assert.Equal(t, input, string(f.Contents))
	})

	t.Run("absent", func(t *testing.T) {
		f := newFile("plain")
		require.NoError(t, run(t, "frontmatter", nil, f))
		assert.Empty(t, f.Data)
		assert.Equal(t, "plain", string(f.Contents))
	})

	t.Run("malformed", func(t *testing.T) {
		f := newFile("---\nunterminated")
		err := run(t, "frontmatter", nil, f)
		assert.True(t, errors.IsErrorCode(err, errors.ErrActionFailed))
		assert.True(t, errors.IsErrorCode(err, errors.ErrFrontMatter))
	})
}

func TestExtname(t *testing.T) {
	f := newFile("")
	require.NoError(t, run(t, "extname", map[string]interface{}{"ext": "html"}, f))
	assert.Equal(t, "/w/src/docs/page.html", f.Path)
	assert.Equal(t, "docs/page.html", f.Relative())
}

func TestChecksum(t *testing.T) {
	f := newFile("hello")
	require.NoError(t, run(t, "checksum", nil, f))
	sum, ok := f.Data["checksum"].(string)
	require.True(t, ok)
	assert.Len(t, sum, 16)

	g := newFile("hello")
	require.NoError(t, run(t, "checksum", map[string]interface{}{"key": "hash"}, g))
	assert.Equal(t, sum, g.Data["hash"])

	v, err := strconv.ParseUint(sum, 16, 64)
	require.NoError(t, err)
	assert.Equal(t, xxhash.Sum64String("hello"), v)
}

func TestPrependAppend(t *testing.T) {
	f := newFile("middle")
	require.NoError(t, run(t, "prepend", map[string]interface{}{"text": "<"}, f))
	require.NoError(t, run(t, "append", map[string]interface{}{"text": ">"}, f))
	assert.Equal(t, "<middle>", string(f.Contents))
}

func TestFail(t *testing.T) {
	f := newFile("")
	err := run(t, "fail", map[string]interface{}{"message": "drafts are not published"}, f)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrActionFailed))
	assert.Contains(t, err.Error(), "docs/page.md: drafts are not published")
}

func TestRegister(t *testing.T) {
	called := false
	require.NoError(t, actions.Register("test-noop", func(map[string]interface{}) (router.Handler, error) {
		return func(context.Context, *types.File) error {
			called = true
			return nil
		}, nil
	}))
	require.NoError(t, run(t, "test-noop", nil, newFile("")))
	assert.True(t, called)

	err := actions.Register("set", nil)
	assert.Error(t, err)
}
