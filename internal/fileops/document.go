// SPDX-License-Identifier: MPL-2.0

package fileops

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// textLines is the document model of plain text input.
type textLines []string

// decodeDocument parses data according to the extension of name into
// maps, slices and scalars. Unknown extensions become text lines.
func decodeDocument(name string, data []byte) (any, error) {
	ext, _ := extension(name)
	switch strings.ToLower(ext) {
	case "json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, errEmptyDocument
			}
			return nil, err
		}
		return normalize(v), nil
	case "yaml", "yml":
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return normalize(v), nil
	case "toml":
		var v map[string]any
		if err := toml.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return normalize(v), nil
	case "csv":
		return decodeCSV(data)
	case "xml":
		return decodeXML(data)
	default:
		return splitLines(data), nil
	}
}

// normalize converts decoder specific types into map[string]any, []any,
// int64, float64, bool, string and nil.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = normalize(e)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[fmt.Sprint(k)] = normalize(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalize(e)
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalize(e)
		}
		return out
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	case int:
		return int64(t)
	case fmt.Stringer:
		return t.String()
	default:
		return v
	}
}

func splitLines(data []byte) textLines {
	var lines textLines
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 64*1024), 16<<20)
	for sc.Scan() {
		lines = append(lines, strings.TrimRight(sc.Text(), "\r"))
	}
	return lines
}

// decodeCSV turns a header row plus records into maps keyed by header.
func decodeCSV(data []byte) (any, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	records := []any{}
	if len(rows) == 0 {
		return records, nil
	}
	header := rows[0]
	for _, row := range rows[1:] {
		rec := make(map[string]any, len(header))
		for i, key := range header {
			if i < len(row) {
				rec[key] = row[i]
			} else {
				rec[key] = ""
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// xmlNode is a generic element tree.
type xmlNode struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Text     string     `xml:",chardata"`
	Children []xmlNode  `xml:",any"`
}

// decodeXML returns the content of the root element. A root whose only
// children are <record> elements decodes to the list of records.
func decodeXML(data []byte) (any, error) {
	var root xmlNode
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	v := root.value()
	if m, ok := v.(map[string]any); ok && len(m) == 1 {
		switch rec := m["record"].(type) {
		case []any:
			return rec, nil
		case map[string]any:
			return []any{rec}, nil
		}
	}
	return v, nil
}

func (n xmlNode) value() any {
	if len(n.Children) == 0 && len(n.Attrs) == 0 {
		return strings.TrimSpace(n.Text)
	}
	m := make(map[string]any, len(n.Children)+len(n.Attrs))
	for _, a := range n.Attrs {
		m["@"+a.Name.Local] = a.Value
	}
	for _, c := range n.Children {
		key := c.XMLName.Local
		v := c.value()
		switch prev := m[key].(type) {
		case nil:
			m[key] = v
		case []any:
			m[key] = append(prev, v)
		default:
			m[key] = []any{prev, v}
		}
	}
	if text := strings.TrimSpace(n.Text); text != "" && len(n.Children) == 0 {
		m["#text"] = text
	}
	return m
}

// encodeDocument renders doc in format.
func encodeDocument(doc any, format string) ([]byte, error) {
	switch format {
	case "json":
		data, err := json.MarshalIndent(jsonValue(doc), "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case "yaml":
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(jsonValue(doc)); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case "toml":
		return toml.Marshal(tomlRoot(doc))
	case "csv":
		return encodeCSV(doc)
	case "xml":
		return encodeXML(doc)
	case "txt":
		return encodeText(doc), nil
	default:
		return nil, &InvalidFormatError{Value: format}
	}
}

// jsonValue turns text lines into a plain string slice.
func jsonValue(doc any) any {
	if lines, ok := doc.(textLines); ok {
		return []string(lines)
	}
	return doc
}

// tomlRoot wraps non-table documents, which TOML cannot represent at the
// top level, and drops nil values TOML has no syntax for.
func tomlRoot(doc any) map[string]any {
	switch t := doc.(type) {
	case map[string]any:
		return dropNils(t).(map[string]any)
	case textLines:
		return map[string]any{"lines": []string(t)}
	case []any:
		return map[string]any{"records": dropNils(t)}
	case nil:
		return map[string]any{}
	default:
		return map[string]any{"value": t}
	}
}

func dropNils(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			if e != nil {
				out[k] = dropNils(e)
			}
		}
		return out
	case []any:
		out := make([]any, 0, len(t))
		for _, e := range t {
			if e != nil {
				out = append(out, dropNils(e))
			}
		}
		return out
	default:
		return v
	}
}

// records flattens doc into rows for CSV. Scalar lists become a single
// value column.
func records(doc any) ([]map[string]any, []string) {
	var rows []map[string]any
	switch t := doc.(type) {
	case map[string]any:
		rows = []map[string]any{t}
	case []any:
		for _, e := range t {
			if m, ok := e.(map[string]any); ok {
				rows = append(rows, m)
			} else {
				rows = append(rows, map[string]any{"value": e})
			}
		}
	case textLines:
		for _, l := range t {
			rows = append(rows, map[string]any{"value": l})
		}
	case nil:
	default:
		rows = []map[string]any{{"value": t}}
	}

	keys := make(map[string]bool)
	for _, r := range rows {
		for k := range r {
			keys[k] = true
		}
	}
	return rows, slices.Sorted(maps.Keys(keys))
}

func encodeCSV(doc any) ([]byte, error) {
	rows, header := records(doc)
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if len(header) > 0 {
		if err := w.Write(header); err != nil {
			return nil, err
		}
	}
	for _, r := range rows {
		line := make([]string, len(header))
		for i, k := range header {
			line[i] = scalarString(r[k])
		}
		if err := w.Write(line); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// scalarString renders a value for a single cell; nested values become JSON.
func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case map[string]any, []any:
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(data)
	default:
		return fmt.Sprint(t)
	}
}

func encodeXML(doc any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")

	root := xml.StartElement{Name: xml.Name{Local: "document"}}
	if err := enc.EncodeToken(root); err != nil {
		return nil, err
	}
	var err error
	switch t := doc.(type) {
	case []any:
		for _, e := range t {
			if err = writeXMLElement(enc, "record", e); err != nil {
				break
			}
		}
	case textLines:
		for _, l := range t {
			if err = writeXMLElement(enc, "line", l); err != nil {
				break
			}
		}
	case map[string]any:
		err = writeXMLFields(enc, t)
	default:
		err = writeXMLElement(enc, "value", t)
	}
	if err != nil {
		return nil, err
	}
	if err := enc.EncodeToken(root.End()); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func writeXMLFields(enc *xml.Encoder, m map[string]any) error {
	for _, k := range slices.Sorted(maps.Keys(m)) {
		if list, ok := m[k].([]any); ok {
			for _, e := range list {
				if err := writeXMLElement(enc, k, e); err != nil {
					return err
				}
			}
			continue
		}
		if err := writeXMLElement(enc, k, m[k]); err != nil {
			return err
		}
	}
	return nil
}

func writeXMLElement(enc *xml.Encoder, name string, v any) error {
	start := xml.StartElement{Name: xml.Name{Local: xmlName(name)}}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	switch t := v.(type) {
	case map[string]any:
		if err := writeXMLFields(enc, t); err != nil {
			return err
		}
	case []any:
		for _, e := range t {
			if err := writeXMLElement(enc, "item", e); err != nil {
				return err
			}
		}
	default:
		if err := enc.EncodeToken(xml.CharData(scalarString(t))); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

// xmlName maps a key onto a valid element name.
func xmlName(key string) string {
	var sb strings.Builder
	for i, r := range key {
		valid := unicode.IsLetter(r) || r == '_' ||
			(i > 0 && (unicode.IsDigit(r) || r == '-' || r == '.'))
		if !valid {
			if i == 0 && (unicode.IsDigit(r) || r == '-' || r == '.') {
				sb.WriteRune('_')
				sb.WriteRune(r)
				continue
			}
			r = '_'
		}
		sb.WriteRune(r)
	}
	if sb.Len() == 0 {
		return "_"
	}
	return sb.String()
}

func encodeText(doc any) []byte {
	var buf bytes.Buffer
	switch t := doc.(type) {
	case textLines:
		for _, l := range t {
			buf.WriteString(l)
			buf.WriteByte('\n')
		}
	case map[string]any:
		writeTextFields(&buf, "", t)
	case []any:
		for i, e := range t {
			if i > 0 {
				buf.WriteByte('\n')
			}
			if m, ok := e.(map[string]any); ok {
				writeTextFields(&buf, "", m)
			} else {
				buf.WriteString(scalarString(e))
				buf.WriteByte('\n')
			}
		}
	case nil:
	default:
		buf.WriteString(scalarString(t))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// writeTextFields prints "key: value" lines, flattening nested maps into
// dotted keys.
func writeTextFields(w io.Writer, prefix string, m map[string]any) {
	for _, k := range slices.Sorted(maps.Keys(m)) {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := m[k].(map[string]any); ok {
			writeTextFields(w, key, nested)
			continue
		}
		fmt.Fprintf(w, "%s: %s\n", key, scalarString(m[k]))
	}
}

// errEmptyDocument is returned for input without any content.
var errEmptyDocument = errors.New("empty document")
