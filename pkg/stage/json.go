package stage

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"strings"
)

func (in *Interp) setupJSON() {
	j := in.NewPlainObject()
	in.global.Define("JSON", j)
	in.method(j, "stringify", func(in *Interp, _ Value, args []Value) Value {
		indent := ""
		switch sp := arg(args, 2).(type) {
		case float64:
			indent = strings.Repeat(" ", min(int(sp), 10))
		case string:
			indent = sp
		}
		var sb strings.Builder
		if !in.stringify(&sb, arg(args, 0), indent, "") {
			return Undefined
		}
		return sb.String()
	})
	in.method(j, "parse", func(in *Interp, _ Value, args []Value) Value {
		dec := json.NewDecoder(strings.NewReader(in.toStr(arg(args, 0))))
		dec.UseNumber()
		v, err := in.parseJSON(dec)
		if err != nil {
			in.throwError("SyntaxError", "JSON.parse: "+err.Error())
		}
		if _, err := dec.Token(); err != io.EOF {
			in.throwError("SyntaxError", "JSON.parse: unexpected data after the value")
		}
		return v
	})
}

func quoteJSON(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.Encode(s)
	return strings.TrimSuffix(buf.String(), "\n")
}

// stringify writes the JSON form of v and reports whether v has one.
func (in *Interp) stringify(sb *strings.Builder, v Value, indent, cur string) bool {
	switch v := v.(type) {
	case undefinedType:
		return false
	case nullType:
		sb.WriteString("null")
	case bool, string:
		if s, ok := v.(string); ok {
			sb.WriteString(quoteJSON(s))
		} else {
			sb.WriteString(ToString(v))
		}
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			sb.WriteString("null")
		} else {
			sb.WriteString(ToString(v))
		}
	case *Object:
		if v.callable() {
			return false
		}
		if f, ok := v.Get("toJSON").(*Object); ok && f.callable() {
			return in.stringify(sb, in.call(f, v, nil), indent, cur)
		}
		inner := cur + indent
		nl, sep := "", ","
		if indent != "" {
			nl = "\n"
		}
		if v.Class == "Array" {
			if len(v.Elems) == 0 {
				sb.WriteString("[]")
				return true
			}
			sb.WriteString("[" + nl)
			for i, e := range v.Elems {
				if i > 0 {
					sb.WriteString(sep + nl)
				}
				sb.WriteString(inner)
				if !in.stringify(sb, e, indent, inner) {
					sb.WriteString("null")
				}
			}
			sb.WriteString(nl + cur + "]")
			return true
		}
		colon := ":"
		if indent != "" {
			colon = ": "
		}
		first := true
		sb.WriteString("{")
		for _, k := range v.Keys() {
			var item strings.Builder
			if !in.stringify(&item, v.Get(k), indent, inner) {
				continue
			}
			if !first {
				sb.WriteString(sep)
			}
			first = false
			sb.WriteString(nl + inner + quoteJSON(k) + colon + item.String())
		}
		if !first {
			sb.WriteString(nl + cur)
		}
		sb.WriteString("}")
	}
	return true
}

func (in *Interp) parseJSON(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '[':
			var elems []Value
			for dec.More() {
				e, err := in.parseJSON(dec)
				if err != nil {
					return nil, err
				}
				elems = append(elems, e)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return in.NewArray(elems...), nil
		case '{':
			o := in.NewPlainObject()
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				v, err := in.parseJSON(dec)
				if err != nil {
					return nil, err
				}
				o.Set(kt.(string), v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return o, nil
		}
	case json.Number:
		return stringToNumber(t.String()), nil
	case string:
		return t, nil
	case bool:
		return t, nil
	case nil:
		return Null, nil
	}
	return nil, io.ErrUnexpectedEOF
}
