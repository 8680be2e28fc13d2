// Package output renders encoded documents to files in one of the supported
// formats and layouts.
package output

import (
	"bytes"
	"encoding/json"
	"strings"

	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

type Layout string

const (
	// LayoutSplit writes one file per root, named by its pool index, plus the index file.
	LayoutSplit Layout = "split"
	// LayoutCombined writes every document and the index into one bundle file.
	LayoutCombined Layout = "combined"
)

const (
	IndexName  = "index"
	BundleName = "bundle"
)

var ErrUnknownOption = errors.Base("unknown output option")

func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", errors.Errorf("%w: format %q (expected json or yaml)", ErrUnknownOption, value)
	}
}

func ParseLayout(value string) (Layout, error) {
	switch Layout(strings.ToLower(strings.TrimSpace(value))) {
	case "", LayoutSplit:
		return LayoutSplit, nil
	case LayoutCombined:
		return LayoutCombined, nil
	default:
		return "", errors.Errorf("%w: layout %q (expected split or combined)", ErrUnknownOption, value)
	}
}

func (f Format) Ext() string {
	return string(f)
}

// Marshal renders value in format f. JSON output is compact unless indent is
// set and never escapes HTML characters; both formats end with a newline.
func Marshal(f Format, value any, indent bool) ([]byte, error) {
	var buf bytes.Buffer
	switch f {
	case FormatJSON:
		encoder := json.NewEncoder(&buf)
		encoder.SetEscapeHTML(false)
		if indent {
			encoder.SetIndent("", "  ")
		}
		if err := encoder.Encode(value); err != nil {
			return nil, errors.WithStack(err)
		}
	case FormatYAML:
		encoder := yaml.NewEncoder(&buf)
		encoder.SetIndent(2)
		if err := encoder.Encode(value); err != nil {
			return nil, errors.WithStack(err)
		}
		if err := encoder.Close(); err != nil {
			return nil, errors.WithStack(err)
		}
	default:
		return nil, errors.Errorf("%w: format %q", ErrUnknownOption, f)
	}
	return buf.Bytes(), nil
}

func unmarshal(f Format, data []byte, value any) error {
	switch f {
	case FormatJSON:
		return errors.WithStack(json.Unmarshal(data, value))
	case FormatYAML:
		return errors.WithStack(yaml.Unmarshal(data, value))
	default:
		return errors.Errorf("%w: format %q", ErrUnknownOption, f)
	}
}
