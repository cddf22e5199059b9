package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/arthur-debert/fileroutes/pkg/app"
	"github.com/arthur-debert/fileroutes/pkg/router"
)

// RenderResult writes a run summary followed by one line per failure
func RenderResult(w io.Writer, res *app.Result, color bool) error {
	st := NewStyles(w, color)

	status := st.Render("Success", "ok")
	if res.Failed > 0 {
		status = st.Render("Error", "failed")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s\n", st.Render("Header", "Run"), st.Render("Muted", res.RunID), status)
	fmt.Fprintf(&b, "  read %s  written %s  failed %s  in %s\n",
		st.Render("Count", fmt.Sprint(res.Read)),
		st.Render("Count", fmt.Sprint(res.Written)),
		st.Render("Count", fmt.Sprint(res.Failed)),
		res.Duration.Round(time.Millisecond),
	)
	for _, err := range res.Errors {
		fmt.Fprintf(&b, "  %s %s\n", st.Render("Error", "x"), err)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderRoutes writes the registered layers as an aligned table
func RenderRoutes(w io.Writer, infos []router.RouteInfo, color bool) error {
	st := NewStyles(w, color)

	if len(infos) == 0 {
		_, err := fmt.Fprintln(w, st.Render("Muted", "no routes"))
		return err
	}

	kindWidth, methodWidth := len("KIND"), len("METHOD")
	for _, info := range infos {
		kindWidth = max(kindWidth, len(info.Kind))
		methodWidth = max(methodWidth, len(info.Method))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s  %s\n",
		st.Render("Header", pad("KIND", kindWidth)),
		st.Render("Header", pad("METHOD", methodWidth)),
		st.Render("Header", "PATTERN"))
	for _, info := range infos {
		fmt.Fprintf(&b, "%s  %s  %s %s\n",
			pad(info.Kind, kindWidth),
			st.Render("Method", pad(info.Method, methodWidth)),
			st.Render("Pattern", info.Pattern),
			st.Render("Muted", fmt.Sprintf("(%d)", info.Handlers)))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
