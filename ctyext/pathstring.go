package ctyext

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// PathString returns a string of the given path.
func PathString(path cty.Path) string {
	var buf bytes.Buffer
	for i, p := range path {
		switch v := p.(type) {
		case cty.GetAttrStep:
			if i > 0 {
				buf.WriteByte('.')
			}
			buf.WriteString(v.Name)
		case cty.IndexStep:
			if v.Key.Type() == cty.Number {
				bf := v.Key.AsBigFloat()
				val, _ := bf.Int64()
				fmt.Fprintf(&buf, "[%d]", val)
				continue
			}
			fmt.Fprintf(&buf, "[%q]", v.Key.AsString())
		default:
			panic(fmt.Sprintf("Unknown path type %T", v))
		}
	}
	return buf.String()
}

// ParsePathString parses a string that was produced by PathString back into
// a path.
func ParsePathString(str string) (cty.Path, error) {
	var path cty.Path
	rest := str
	for len(rest) > 0 {
		if rest[0] == '.' {
			rest = rest[1:]
			continue
		}
		if rest[0] == '[' {
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return nil, fmt.Errorf("unterminated index in %q", str)
			}
			key := rest[1:end]
			rest = rest[end+1:]
			if len(key) >= 2 && key[0] == '"' {
				unq, err := strconv.Unquote(key)
				if err != nil {
					return nil, fmt.Errorf("parse index key %s: %v", key, err)
				}
				path = append(path, cty.IndexStep{Key: cty.StringVal(unq)})
				continue
			}
			n, err := strconv.ParseInt(key, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("parse index %s: %v", key, err)
			}
			path = append(path, cty.IndexStep{Key: cty.NumberIntVal(n)})
			continue
		}
		end := strings.IndexAny(rest, ".[")
		if end < 0 {
			end = len(rest)
		}
		name := rest[:end]
		if name == "" {
			return nil, fmt.Errorf("empty attribute name in %q", str)
		}
		path = append(path, cty.GetAttrStep{Name: name})
		rest = rest[end:]
	}
	if len(path) == 0 {
		return nil, fmt.Errorf("empty path")
	}
	return path, nil
}
