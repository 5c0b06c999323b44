package visibility

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/aretw0/stitch/pkg/domain"
)

// Lookup resolves a dotted path ("address.city", "items.0.name") against ctx.
// A key containing dots that exists verbatim at the top level wins over traversal.
// found is false when any segment is absent; a present nil value is found.
func Lookup(ctx domain.Values, path string) (value any, found bool) {
	if path == "" {
		return nil, false
	}
	if v, ok := ctx[path]; ok {
		return v, true
	}
	if !strings.Contains(path, ".") {
		return nil, false
	}

	var cur any = map[string]any(ctx)
	for _, seg := range strings.Split(path, ".") {
		cur, found = step(cur, seg)
		if !found {
			return nil, false
		}
	}
	return cur, true
}

func step(cur any, seg string) (any, bool) {
	switch c := cur.(type) {
	case map[string]any:
		v, ok := c[seg]
		return v, ok
	case domain.Values:
		v, ok := c[seg]
		return v, ok
	case []any:
		i, ok := index(seg, len(c))
		if !ok {
			return nil, false
		}
		return c[i], true
	case nil:
		return nil, false
	}

	rv := reflect.ValueOf(cur)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		v := rv.MapIndex(reflect.ValueOf(seg).Convert(rv.Type().Key()))
		if !v.IsValid() {
			return nil, false
		}
		return v.Interface(), true
	case reflect.Slice, reflect.Array:
		i, ok := index(seg, rv.Len())
		if !ok {
			return nil, false
		}
		return rv.Index(i).Interface(), true
	}
	return nil, false
}

func index(seg string, n int) (int, bool) {
	i, err := strconv.Atoi(seg)
	if err != nil || i < 0 || i >= n {
		return 0, false
	}
	return i, true
}
