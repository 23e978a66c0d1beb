package xlsxtemplate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathResolver_BasicAndIndex(t *testing.T) {
	root := map[string]interface{}{
		"a": map[string]interface{}{
			"b": map[string]interface{}{"c": 42.0},
		},
		"arr": []interface{}{
			map[string]interface{}{"name": "zero"},
			map[string]interface{}{"name": "one"},
		},
		"key with space": "spaced",
	}
	r := PathResolver{}

	assert.Equal(t, 42.0, r.Resolve(root, "a.b.c"))
	assert.Equal(t, "one", r.Resolve(root, "arr[1].name"))
	assert.Equal(t, "one", r.Resolve(root, "arr.1.name"))
	assert.Equal(t, "spaced", r.Resolve(root, `["key with space"]`))
	assert.Equal(t, "spaced", r.Resolve(root, `['key with space']`))

	// отсутствующее значение даёт пустую строку
	assert.Equal(t, "", r.Resolve(root, "a.missing"))
	assert.Equal(t, "", r.Resolve(root, "arr[5].name"))
	assert.Equal(t, "", r.Resolve(root, "a.b.c.d"))
}

func TestPathResolver_MapsOverArrays(t *testing.T) {
	root := map[string]interface{}{
		"users": []interface{}{
			map[string]interface{}{"name": "Ann", "tags": []interface{}{"x"}},
			map[string]interface{}{"name": "Bob"},
		},
	}
	got := PathResolver{}.Resolve(root, "users.name")
	assert.Equal(t, []interface{}{"Ann", "Bob"}, got)

	// элемент без поля даёт nil на своём месте
	got = PathResolver{}.Resolve(root, "users.tags")
	assert.Equal(t, []interface{}{[]interface{}{"x"}, nil}, got)
}

type testAddress struct {
	City string `json:"city"`
}

type testUser struct {
	Name      string
	Addresses []testAddress `json:"addresses"`
	secret    string
}

func TestPathResolver_Structs(t *testing.T) {
	root := map[string]interface{}{
		"user": &testUser{Name: "Ann", Addresses: []testAddress{{City: "Oslo"}, {City: "Bergen"}}, secret: "x"},
	}
	r := PathResolver{}
	assert.Equal(t, "Ann", r.Resolve(root, "user.Name"))
	assert.Equal(t, "Ann", r.Resolve(root, "user.name"))
	assert.Equal(t, "Oslo", r.Resolve(root, "user.addresses[0].city"))
	assert.Equal(t, []interface{}{"Oslo", "Bergen"}, r.Resolve(root, "user.addresses.city"))
	assert.Equal(t, "", r.Resolve(root, "user.secret"))

	typed := map[string][]int{"nums": {4, 5}}
	assert.Equal(t, 5, r.Resolve(typed, "nums[1]"))
}

func TestNextSeg(t *testing.T) {
	// имя
	if seg, tail := nextSeg("foo.bar"); seg != "foo" || tail != ".bar" {
		t.Fatalf("nextSeg name: seg=%q tail=%q", seg, tail)
	}
	// индекс
	if seg, tail := nextSeg("[10].rest"); seg != "10" || tail != ".rest" {
		t.Fatalf("nextSeg index: seg=%q tail=%q", seg, tail)
	}
	// ключ в кавычках может содержать точки
	if seg, tail := nextSeg(`["a.b"].c`); seg != "a.b" || tail != ".c" {
		t.Fatalf("nextSeg quoted: seg=%q tail=%q", seg, tail)
	}
}

func TestExprResolver(t *testing.T) {
	root := map[string]interface{}{
		"user":  map[string]interface{}{"name": "Ann"},
		"items": []interface{}{1.0, 2.0, 3.0},
		"paid":  true,
	}
	r := NewExprResolver()

	assert.Equal(t, "Ann", r.Resolve(root, "user.name"))
	assert.Equal(t, "ANN", r.Resolve(root, "upper(user.name)"))
	assert.Equal(t, 3, r.Resolve(root, "len(items)"))
	assert.Equal(t, "yes", r.Resolve(root, `paid ? "yes" : "no"`))
	assert.Equal(t, "", r.Resolve(root, "missing"))

	// не компилируется, работает путь
	assert.Equal(t, 1.0, r.Resolve(root, "items[0"))

	// повторный вызов берёт программу из кэша
	assert.Equal(t, "ANN", r.Resolve(root, "upper(user.name)"))
	assert.Len(t, r.programs, 5)
}

func TestResolverFunc(t *testing.T) {
	r := ResolverFunc(func(root interface{}, accessor string) interface{} { return accessor + "!" })
	assert.Equal(t, "x!", r.Resolve(nil, "x"))
}
