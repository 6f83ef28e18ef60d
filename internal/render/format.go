package render

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// Format selects between the report and the structured pass-through output.
type Format string

const (
	Markdown Format = "markdown"
	JSON     Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return Markdown, nil
	case Markdown, JSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q: expected markdown or json", s)
	}
}

// Width -1 keeps every array element on its own line.
var structuredOptions = &pretty.Options{
	Width:  -1,
	Prefix: "",
	Indent: "  ",
}

// Structured re-indents an upstream JSON value with two spaces. Key order and
// string escapes are kept exactly as received.
func Structured(doc gjson.Result) string {
	raw := doc.Raw
	if raw == "" {
		raw = "null"
	}
	return strings.TrimRight(string(pretty.PrettyOptions([]byte(raw), structuredOptions)), "\n")
}

func heading(text string) string {
	return text + "\n"
}
