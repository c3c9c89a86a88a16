package stage

import (
	"strconv"
	"strings"
)

const maxInspectDepth = 2

// Inspect formats a value for display. Strings are quoted, and objects are
// shown down to a fixed depth.
func Inspect(v Value) string {
	var sb strings.Builder
	inspect(&sb, v, 0)
	return sb.String()
}

func inspect(sb *strings.Builder, v Value, depth int) {
	o, ok := v.(*Object)
	if !ok {
		if s, ok := v.(string); ok {
			sb.WriteString(strconv.Quote(s))
		} else {
			sb.WriteString(ToString(v))
		}
		return
	}
	switch {
	case o.callable():
		sb.WriteString("[Function]")
	case o.re != nil || o.Class == "Error":
		sb.WriteString(ToString(o))
	case o.isArrayLike():
		if depth > maxInspectDepth {
			sb.WriteString("[Array]")
			return
		}
		sb.WriteByte('[')
		for i, e := range o.Elems {
			if i > 0 {
				sb.WriteString(", ")
			}
			inspect(sb, e, depth+1)
		}
		sb.WriteByte(']')
	default:
		keys := o.Keys()
		if len(keys) == 0 {
			sb.WriteString("{}")
			return
		}
		if depth > maxInspectDepth {
			sb.WriteString("[Object]")
			return
		}
		sb.WriteString("{ ")
		for i, k := range keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			if isPlainKey(k) {
				sb.WriteString(k)
			} else {
				sb.WriteString(strconv.Quote(k))
			}
			sb.WriteString(": ")
			v, _ := o.Own(k)
			inspect(sb, v, depth+1)
		}
		sb.WriteString(" }")
	}
}

func isPlainKey(k string) bool {
	if k == "" {
		return false
	}
	for i, r := range k {
		switch {
		case r == '_' || r == '$' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z'):
		case '0' <= r && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
