package router

import (
	"context"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/arthur-debert/fileroutes/pkg/errors"
)

// Params holds values captured by a pattern match
type Params map[string]string

// Pattern decides whether a slash-separated path matches
type Pattern interface {
	Match(p string) (Params, bool)
	String() string
}

type anyPattern struct{}

// Any matches every path
func Any() Pattern { return anyPattern{} }

func (anyPattern) Match(string) (Params, bool) { return nil, true }
func (anyPattern) String() string              { return "*" }

type regexpPattern struct {
	re *regexp.Regexp
}

// Regexp matches paths against re. Named groups are captured by name,
// unnamed ones by their index.
func Regexp(re *regexp.Regexp) Pattern {
	return regexpPattern{re: re}
}

func (r regexpPattern) Match(p string) (Params, bool) {
	m := r.re.FindStringSubmatch(p)
	if m == nil {
		return nil, false
	}
	if len(m) == 1 {
		return nil, true
	}
	params := make(Params, len(m)-1)
	for i, name := range r.re.SubexpNames() {
		if i == 0 {
			continue
		}
		if name == "" {
			name = strconv.Itoa(i)
		}
		params[name] = m[i]
	}
	return params, true
}

func (r regexpPattern) String() string { return "/" + r.re.String() + "/" }

type globPattern struct {
	pattern  string
	rest     string
	anyDepth bool
	hasSlash bool
}

// Glob builds a glob pattern following path.Match syntax.
func Glob(pattern string) (Pattern, error) {
	if pattern == "" {
		return nil, errors.New(errors.ErrPattern, "empty pattern")
	}
	g := globPattern{pattern: pattern}
	if strings.HasPrefix(pattern, "**/") {
		g.anyDepth = true
		g.rest = strings.TrimPrefix(pattern, "**/")
	} else {
		g.hasSlash = strings.Contains(pattern, "/")
	}
	check := g.pattern
	if g.anyDepth {
		check = g.rest
	}
	if _, err := path.Match(check, ""); err != nil {
		return nil, errors.Wrapf(err, errors.ErrPattern, "invalid glob %q", pattern)
	}
	return g, nil
}

func (g globPattern) Match(p string) (Params, bool) {
	switch {
	case g.anyDepth:
		segs := strings.Split(p, "/")
		for i := range segs {
			if ok, _ := path.Match(g.rest, strings.Join(segs[i:], "/")); ok {
				return nil, true
			}
		}
		return nil, false
	case g.hasSlash:
		ok, _ := path.Match(g.pattern, p)
		return nil, ok
	default:
		ok, _ := path.Match(g.pattern, path.Base(p))
		return nil, ok
	}
}

func (g globPattern) String() string { return g.pattern }

// Compile builds a Pattern from its string form: "/expr/" is a regular
// expression, anything else a glob.
func Compile(expr string) (Pattern, error) {
	if len(expr) >= 2 && strings.HasPrefix(expr, "/") && strings.HasSuffix(expr, "/") {
		re, err := regexp.Compile(expr[1 : len(expr)-1])
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrPattern, "invalid regular expression %q", expr)
		}
		return Regexp(re), nil
	}
	return Glob(expr)
}

// MustCompile is like Compile but panics on error
func MustCompile(expr string) Pattern {
	p, err := Compile(expr)
	if err != nil {
		panic(err)
	}
	return p
}

type paramsKey struct{}

func withParams(ctx context.Context, params Params) context.Context {
	if len(params) == 0 {
		return ctx
	}
	return context.WithValue(ctx, paramsKey{}, params)
}

// ParamsFrom returns the params captured by the route currently running
func ParamsFrom(ctx context.Context) Params {
	if p, ok := ctx.Value(paramsKey{}).(Params); ok {
		return p
	}
	return nil
}
