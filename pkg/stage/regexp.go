package stage

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

type jsRegexp struct {
	re     *regexp.Regexp
	source string
	flags  string
	global bool
}

// translateRegexp rewrites a JavaScript pattern into RE2 syntax. Only
// \uXXXX escapes and the flags need rewriting; lookarounds and
// backreferences are not supported by RE2 and fail to compile.
func translateRegexp(source, flags string) (string, error) {
	var sb strings.Builder
	var mods string
	if strings.Contains(flags, "i") {
		mods += "i"
	}
	if strings.Contains(flags, "m") {
		mods += "m"
	}
	if mods != "" {
		sb.WriteString("(?" + mods + ")")
	}
	for i := 0; i < len(source); i++ {
		c := source[i]
		if c == '\\' && i+1 < len(source) {
			next := source[i+1]
			if next == 'u' && i+5 < len(source) {
				if _, err := strconv.ParseUint(source[i+2:i+6], 16, 32); err == nil {
					sb.WriteString(`\x{` + source[i+2:i+6] + `}`)
					i += 5
					continue
				}
			}
			sb.WriteByte(c)
			sb.WriteByte(next)
			i++
			continue
		}
		sb.WriteByte(c)
	}
	return sb.String(), nil
}

func (in *Interp) newRegExp(source, flags string) *Object {
	pat, _ := translateRegexp(source, flags)
	re, err := regexp.Compile(pat)
	if err != nil {
		in.throwError("SyntaxError", "Invalid regular expression: /"+source+"/: "+err.Error())
	}
	o := &Object{Class: "RegExp", Proto: in.RegExpPrototype,
		re: &jsRegexp{re: re, source: source, flags: flags, global: strings.Contains(flags, "g")}}
	o.SetHidden("lastIndex", 0.0)
	o.SetHidden("source", source)
	o.SetHidden("global", o.re.global)
	return o
}

func runeIndex(s string, byteOff int) int {
	return utf8.RuneCountInString(s[:byteOff])
}

func byteIndex(s string, runeOff int) int {
	i := 0
	for pos := range s {
		if i == runeOff {
			return pos
		}
		i++
	}
	return len(s)
}

// matchArray builds the array returned by exec and non-global match.
func (in *Interp) matchArray(s string, loc []int) *Object {
	elems := make([]Value, len(loc)/2)
	for g := range elems {
		if loc[2*g] < 0 {
			elems[g] = Undefined
		} else {
			elems[g] = s[loc[2*g]:loc[2*g+1]]
		}
	}
	a := in.NewArray(elems...)
	a.Set("index", float64(runeIndex(s, loc[0])))
	a.Set("input", s)
	return a
}

func (in *Interp) regexpExec(o *Object, s string) Value {
	r := o.re
	start := 0
	if r.global {
		start = byteIndex(s, int(toNumber(o.Get("lastIndex"))))
		if start > len(s) {
			o.Set("lastIndex", 0.0)
			return Null
		}
	}
	loc := r.re.FindStringSubmatchIndex(s[start:])
	if loc == nil {
		if r.global {
			o.Set("lastIndex", 0.0)
		}
		return Null
	}
	for i := range loc {
		if loc[i] >= 0 {
			loc[i] += start
		}
	}
	if r.global {
		end := loc[1]
		if end == loc[0] {
			end++
		}
		o.Set("lastIndex", float64(runeIndex(s, min(end, len(s)))))
	}
	return in.matchArray(s, loc)
}

// expandReplacement implements the $ patterns of String.prototype.replace.
func expandReplacement(repl, s string, loc []int) string {
	var sb strings.Builder
	for i := 0; i < len(repl); i++ {
		c := repl[i]
		if c != '$' || i+1 >= len(repl) {
			sb.WriteByte(c)
			continue
		}
		next := repl[i+1]
		switch {
		case next == '$':
			sb.WriteByte('$')
			i++
		case next == '&':
			sb.WriteString(s[loc[0]:loc[1]])
			i++
		case next == '`':
			sb.WriteString(s[:loc[0]])
			i++
		case next == '\'':
			sb.WriteString(s[loc[1]:])
			i++
		case next >= '0' && next <= '9':
			g := int(next - '0')
			j := i + 2
			if j < len(repl) && repl[j] >= '0' && repl[j] <= '9' {
				if g2 := g*10 + int(repl[j]-'0'); g2 < len(loc)/2 {
					g, j = g2, j+1
				}
			}
			if g == 0 || g >= len(loc)/2 {
				sb.WriteByte(c)
				continue
			}
			if loc[2*g] >= 0 {
				sb.WriteString(s[loc[2*g]:loc[2*g+1]])
			}
			i = j - 1
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

func (in *Interp) stringReplace(s string, pattern, replacement Value) string {
	replaceOne := func(loc []int) string {
		if f, ok := replacement.(*Object); ok && f.callable() {
			args := make([]Value, 0, len(loc)/2+2)
			for g := 0; g < len(loc)/2; g++ {
				if loc[2*g] < 0 {
					args = append(args, Undefined)
				} else {
					args = append(args, s[loc[2*g]:loc[2*g+1]])
				}
			}
			args = append(args, float64(runeIndex(s, loc[0])), s)
			return in.toStr(in.call(f, Undefined, args))
		}
		return expandReplacement(in.toStr(replacement), s, loc)
	}

	var locs [][]int
	if re, ok := pattern.(*Object); ok && re.re != nil {
		if re.re.global {
			locs = re.re.re.FindAllStringSubmatchIndex(s, -1)
			re.Set("lastIndex", 0.0)
		} else if loc := re.re.re.FindStringSubmatchIndex(s); loc != nil {
			locs = [][]int{loc}
		}
	} else {
		needle := in.toStr(pattern)
		if i := strings.Index(s, needle); i >= 0 {
			locs = [][]int{{i, i + len(needle)}}
		}
	}
	var sb strings.Builder
	last := 0
	for _, loc := range locs {
		sb.WriteString(s[last:loc[0]])
		sb.WriteString(replaceOne(loc))
		last = loc[1]
	}
	sb.WriteString(s[last:])
	return sb.String()
}

func (in *Interp) stringMatch(s string, pattern Value) Value {
	re, ok := pattern.(*Object)
	if !ok || re.re == nil {
		re = in.newRegExp(in.toStr(pattern), "")
	}
	if !re.re.global {
		loc := re.re.re.FindStringSubmatchIndex(s)
		if loc == nil {
			return Null
		}
		return in.matchArray(s, loc)
	}
	all := re.re.re.FindAllString(s, -1)
	re.Set("lastIndex", 0.0)
	if all == nil {
		return Null
	}
	elems := make([]Value, len(all))
	for i, m := range all {
		elems[i] = m
	}
	return in.NewArray(elems...)
}

func (in *Interp) stringSplit(s string, sep Value, limit int) Value {
	var parts []string
	switch sep := sep.(type) {
	case undefinedType:
		parts = []string{s}
	case *Object:
		if sep.re != nil {
			parts = sep.re.re.Split(s, -1)
			if s == "" {
				parts = []string{""}
			}
			break
		}
		parts = strings.Split(s, in.toStr(sep))
	default:
		str := in.toStr(sep)
		if str == "" {
			for _, r := range s {
				parts = append(parts, string(r))
			}
		} else {
			parts = strings.Split(s, str)
		}
	}
	if limit >= 0 && len(parts) > limit {
		parts = parts[:limit]
	}
	elems := make([]Value, len(parts))
	for i, p := range parts {
		elems[i] = p
	}
	return in.NewArray(elems...)
}
