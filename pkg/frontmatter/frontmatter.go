// Package frontmatter splits a metadata header from file contents.
//
// YAML headers are delimited by "---" lines and TOML headers by "+++"
// lines; both must start on the first line of the file.
package frontmatter

import (
	"bytes"

	"github.com/arthur-debert/fileroutes/pkg/errors"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format identifies the header syntax
type Format string

const (
	FormatNone Format = ""
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

var delimiters = map[Format][]byte{
	FormatYAML: []byte("---"),
	FormatTOML: []byte("+++"),
}

// Detect reports which front matter format contents start with
func Detect(contents []byte) Format {
	for format, delim := range delimiters {
		if isDelimLine(contents, delim) {
			return format
		}
	}
	return FormatNone
}

// Parse extracts front matter. Without front matter it returns nil data
// and contents unchanged.
func Parse(contents []byte) (map[string]interface{}, []byte, error) {
	format := Detect(contents)
	if format == FormatNone {
		return nil, contents, nil
	}
	delim := delimiters[format]

	header, body, ok := split(contents, delim)
	if !ok {
		return nil, nil, errors.Newf(errors.ErrFrontMatter, "unterminated %s front matter", format)
	}

	data := make(map[string]interface{})
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(header, &data)
	case FormatTOML:
		err = toml.Unmarshal(header, &data)
	}
	if err != nil {
		return nil, nil, errors.Wrapf(err, errors.ErrFrontMatter, "invalid %s front matter", format)
	}
	return data, body, nil
}

func isDelimLine(contents, delim []byte) bool {
	if !bytes.HasPrefix(contents, delim) {
		return false
	}
	rest := contents[len(delim):]
	return len(rest) == 0 || rest[0] == '\n' || bytes.HasPrefix(rest, []byte("\r\n"))
}

// split returns the header between the opening and closing delimiter
// lines, and the body after the closing line.
func split(contents, delim []byte) (header, body []byte, ok bool) {
	nl := bytes.IndexByte(contents, '\n')
	if nl < 0 {
		return nil, nil, false
	}
	rest := contents[nl+1:]
	offset := 0
	for offset <= len(rest) {
		line := rest[offset:]
		end := bytes.IndexByte(line, '\n')
		var current []byte
		if end < 0 {
			current = line
		} else {
			current = line[:end]
		}
		if bytes.Equal(bytes.TrimRight(current, "\r"), delim) {
			header = rest[:offset]
			if end < 0 {
				return header, nil, true
			}
			return header, rest[offset+end+1:], true
		}
		if end < 0 {
			break
		}
		offset += end + 1
	}
	return nil, nil, false
}
