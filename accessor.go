package xlsxtemplate

import (
	"reflect"
	"strconv"
	"strings"
	"sync"

	expro "github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Resolver достаёт значение из дерева данных по пути из плейсхолдера.
// Отсутствующее значение возвращается как пустая строка, не nil.
type Resolver interface {
	Resolve(root interface{}, accessor string) interface{}
}

// ResolverFunc позволяет передать функцию как Resolver.
type ResolverFunc func(root interface{}, accessor string) interface{}

func (f ResolverFunc) Resolve(root interface{}, accessor string) interface{} { return f(root, accessor) }

// -----------------------------
// Пути вида a.b[0]["c d"]
// -----------------------------

// PathResolver понимает точечную и скобочную нотацию, ключи в кавычках
// и числовые индексы. Если сегмент-имя применяется к массиву, остаток пути
// вычисляется для каждого элемента и возвращается массив той же длины.
type PathResolver struct{}

func (PathResolver) Resolve(root interface{}, accessor string) interface{} {
	v := drill(root, parsePath(accessor))
	if v == nil {
		return ""
	}
	return v
}

type pathSeg struct {
	key     string
	index   int
	numeric bool
}

func parsePath(path string) []pathSeg {
	var segs []pathSeg
	rest := strings.TrimSpace(path)
	for rest != "" {
		var key string
		key, rest = nextSeg(rest)
		if key == "" {
			continue
		}
		seg := pathSeg{key: key}
		if i, err := strconv.Atoi(key); err == nil && i >= 0 && isDigits(key) {
			seg.index, seg.numeric = i, true
		}
		segs = append(segs, seg)
	}
	return segs
}

// nextSeg отрезает первый сегмент пути: имя до '.'/'[' либо содержимое [...].
func nextSeg(path string) (seg string, tail string) {
	if path == "" {
		return "", ""
	}
	if path[0] == '.' {
		return "", path[1:]
	}
	if path[0] == '[' {
		if len(path) > 1 && (path[1] == '"' || path[1] == '\'') {
			if i := strings.Index(path[2:], string(path[1])+"]"); i >= 0 {
				return path[2 : 2+i], path[2+i+2:]
			}
		}
		if i := strings.IndexByte(path, ']'); i >= 0 {
			return strings.TrimSpace(path[1:i]), path[i+1:]
		}
		return path[1:], ""
	}
	i := 0
	for i < len(path) && path[i] != '.' && path[i] != '[' {
		i++
	}
	return path[:i], path[i:]
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

func drill(cur interface{}, segs []pathSeg) interface{} {
	for i, seg := range segs {
		if cur == nil {
			return nil
		}
		if items, ok := sequence(cur); ok && !seg.numeric {
			out := make([]interface{}, len(items))
			for j, it := range items {
				out[j] = drill(it, segs[i:])
			}
			return out
		}
		cur = step(cur, seg)
	}
	return cur
}

// sequence возвращает элементы среза/массива ([]byte массивом не считается).
func sequence(v interface{}) ([]interface{}, bool) {
	if arr, ok := v.([]interface{}); ok {
		return arr, true
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr && !rv.IsNil() {
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return nil, false
		}
	case reflect.Array:
	default:
		return nil, false
	}
	out := make([]interface{}, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func step(cur interface{}, seg pathSeg) interface{} {
	switch vv := cur.(type) {
	case map[string]interface{}:
		return vv[seg.key]
	case []interface{}:
		if seg.index < 0 || seg.index >= len(vv) {
			return nil
		}
		return vv[seg.index]
	}

	rv := reflect.ValueOf(cur)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil
		}
		mv := rv.MapIndex(reflect.ValueOf(seg.key).Convert(rv.Type().Key()))
		if !mv.IsValid() {
			return nil
		}
		return mv.Interface()
	case reflect.Slice, reflect.Array:
		if seg.index < 0 || seg.index >= rv.Len() {
			return nil
		}
		return rv.Index(seg.index).Interface()
	case reflect.Struct:
		return structField(rv, seg.key)
	}
	return nil
}

// structField ищет экспортируемое поле по json-тегу, затем по имени.
func structField(rv reflect.Value, name string) interface{} {
	rt := rv.Type()
	var fallback = -1
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if f.PkgPath != "" {
			continue
		}
		if tag, _, _ := strings.Cut(f.Tag.Get("json"), ","); tag == name {
			return rv.Field(i).Interface()
		}
		if fallback < 0 && (f.Name == name || strings.EqualFold(f.Name, name)) {
			fallback = i
		}
	}
	if fallback >= 0 {
		return rv.Field(fallback).Interface()
	}
	return nil
}

// -----------------------------
// Выражения expr-lang
// -----------------------------

// ExprResolver вычисляет путь как выражение expr-lang над корнем данных,
// например ${len(items)} или ${upper(user.name)}. Если выражение не
// компилируется или падает при выполнении, используется Fallback
// (по умолчанию PathResolver).
type ExprResolver struct {
	Fallback Resolver

	mu       sync.Mutex
	programs map[string]*vm.Program
}

// NewExprResolver создаёт ExprResolver с PathResolver в качестве запасного.
func NewExprResolver() *ExprResolver {
	return &ExprResolver{Fallback: PathResolver{}, programs: map[string]*vm.Program{}}
}

func (r *ExprResolver) Resolve(root interface{}, accessor string) interface{} {
	if program, err := r.compile(accessor); err == nil {
		if out, err := expro.Run(program, exprEnv(root)); err == nil {
			if out == nil {
				return ""
			}
			return out
		}
	}
	fb := r.Fallback
	if fb == nil {
		fb = PathResolver{}
	}
	return fb.Resolve(root, accessor)
}

func (r *ExprResolver) compile(code string) (*vm.Program, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.programs == nil {
		r.programs = map[string]*vm.Program{}
	}
	if p, ok := r.programs[code]; ok {
		return p, nil
	}
	p, err := expro.Compile(code, expro.AllowUndefinedVariables())
	if err != nil {
		return nil, err
	}
	r.programs[code] = p
	return p, nil
}

// exprEnv — окружение для expr: словари и структуры передаются как есть,
// остальное доступно под именем data.
func exprEnv(root interface{}) interface{} {
	if m, ok := root.(map[string]interface{}); ok {
		return m
	}
	rv := reflect.ValueOf(root)
	for rv.Kind() == reflect.Ptr && !rv.IsNil() {
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.Struct || (rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String) {
		return root
	}
	return map[string]interface{}{"data": root}
}
