package ui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"

	"bfhlform/internal/form"
)

const (
	colorKey     = "\033[36m"
	colorString  = "\033[32m"
	colorNumber  = "\033[33m"
	colorBool    = "\033[35m"
	colorNull    = "\033[90m"
	colorBracket = "\033[37m"
)

// colorizeView prints the view like View.JSON but with ansi colors. Keys keep
// the order they arrive in: field order at the top, backend order below.
func colorizeView(view form.View) string {
	if len(view) == 0 {
		return colorBracket + "{}" + colorReset
	}
	var sb strings.Builder
	sb.WriteString(colorBracket + "{" + colorReset + "\n")
	for i, e := range view {
		sb.WriteString("  ")
		writeKey(&sb, string(e.Field))
		sb.WriteString(colorizeJSON(e.Value, 1))
		if i < len(view)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString(colorBracket + "}" + colorReset)
	return sb.String()
}

// colorizeJSON re-indents raw with colors, starting depth levels in. Numbers
// are printed as the backend wrote them. Input that is not one JSON value
// comes back uncolored.
func colorizeJSON(raw []byte, depth int) string {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	p := painter{dec: dec}

	tok, err := dec.Token()
	if err == nil {
		err = p.value(tok, depth)
	}
	if err == nil {
		if _, err = dec.Token(); err == io.EOF {
			return p.sb.String()
		}
	}
	return string(raw)
}

type painter struct {
	dec *json.Decoder
	sb  strings.Builder
}

func (p *painter) value(tok json.Token, depth int) error {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '[':
			return p.container(depth, "[", "]", false)
		case '{':
			return p.container(depth, "{", "}", true)
		}
		return fmt.Errorf("unexpected %v", t)
	case nil:
		p.sb.WriteString(colorNull + "null" + colorReset)
	case bool:
		p.sb.WriteString(colorBool + fmt.Sprint(t) + colorReset)
	case json.Number:
		p.sb.WriteString(colorNumber + t.String() + colorReset)
	case string:
		p.sb.WriteString(colorString + quote(t) + colorReset)
	default:
		return fmt.Errorf("unexpected token %T", tok)
	}
	return nil
}

// container writes the members of an array or object whose opening
// delimiter has already been read, then consumes the closing one.
func (p *painter) container(depth int, open, end string, object bool) error {
	pad := strings.Repeat("  ", depth)
	p.sb.WriteString(colorBracket + open + colorReset)
	n := 0
	for p.dec.More() {
		if n > 0 {
			p.sb.WriteString(",")
		}
		p.sb.WriteString("\n" + pad + "  ")
		if object {
			key, err := p.dec.Token()
			if err != nil {
				return err
			}
			k, ok := key.(string)
			if !ok {
				return fmt.Errorf("object key %v", key)
			}
			writeKey(&p.sb, k)
		}
		tok, err := p.dec.Token()
		if err != nil {
			return err
		}
		if err := p.value(tok, depth+1); err != nil {
			return err
		}
		n++
	}
	if _, err := p.dec.Token(); err != nil {
		return err
	}
	if n > 0 {
		p.sb.WriteString("\n" + pad)
	}
	p.sb.WriteString(colorBracket + end + colorReset)
	return nil
}

func writeKey(sb *strings.Builder, k string) {
	sb.WriteString(colorKey + quote(k) + colorReset + ": ")
}

// quote escapes s the way encoding/json does, minus the html escaping.
func quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return strings.TrimSuffix(buf.String(), "\n")
}

var ansiRe = regexp.MustCompile("\033\\[[0-9;]*m")

// stripANSI removes color codes, e.g. before measuring a line.
func stripANSI(s string) string {
	return ansiRe.ReplaceAllString(s, "")
}
