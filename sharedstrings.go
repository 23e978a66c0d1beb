package xlsxtemplate

import (
	"strconv"

	"github.com/beevik/etree"
)

type substKind int

const (
	// substShared: запись уже лежит в новой таблице строк под index
	substShared substKind = iota
	// substScalar: одиночный плейсхолдер со скалярным значением
	substScalar
	// substColumns: одиночный ${path} с массивом, раскрывается по колонкам
	substColumns
	// substTable: одиночный ${table:path} с массивом, раскрывается по строкам
	substTable
	// substDropped: ${table:path} без массива, ячейка не выводится
	substDropped
)

// slotValue — результат Classify: ok=false значит "значение не задано".
type slotValue struct {
	value CellValue
	ok    bool
}

type substitution struct {
	kind   substKind
	index  int
	value  slotValue
	values []slotValue
}

// stringTable — разобранная таблица общих строк: по одной записи на
// каждый исходный <si> и сжатый список новых <si>.
type stringTable struct {
	root    *etree.Element
	records []substitution
	items   []*etree.Element
}

// classifySharedStrings проходит по всем <si> один раз и решает, чем
// заменить каждую запись.
func classifySharedStrings(doc *etree.Document, data interface{}, resolver Resolver, o *Options) (*stringTable, error) {
	root := doc.Root()
	if root == nil || root.Tag != "sst" {
		return nil, ErrNoStringTable
	}
	st := &stringTable{root: root}

	render := func(tk cellToken) string {
		if tk.table {
			o.debugf("table-плейсхолдер %s внутри текста не поддерживается", tk.text)
			return ""
		}
		return ValueToString(resolver.Resolve(data, tk.accessor))
	}
	appendItem := func(si *etree.Element) substitution {
		st.items = append(st.items, si)
		return substitution{kind: substShared, index: len(st.items) - 1}
	}

	items := root.SelectElements("si")
	st.records = make([]substitution, len(items))
	for i, si := range items {
		// rich text: заменяем текст внутри каждого <t>, разметку не трогаем
		if si.SelectElement("r") != nil {
			rich := si.Copy()
			for _, r := range rich.SelectElements("r") {
				if t := r.SelectElement("t"); t != nil {
					setText(t, replacePlaceholders(t.Text(), render))
				}
			}
			st.records[i] = appendItem(rich)
			continue
		}

		var text string
		if t := si.SelectElement("t"); t != nil {
			text = t.Text()
		}
		if !hasPlaceholders(text) {
			st.records[i] = appendItem(si.Copy())
			continue
		}
		tk, sole := soleToken(text)
		if !sole {
			st.records[i] = appendItem(newSharedString(replacePlaceholders(text, render), si))
			continue
		}

		value := resolver.Resolve(data, tk.accessor)
		seq, isSeq := sequence(value)
		switch {
		case tk.table && isSeq:
			st.records[i] = substitution{kind: substTable, values: classifyAll(seq)}
		case tk.table:
			o.debugf("%s: значение не массив, строка не раскрывается", tk.text)
			st.records[i] = substitution{kind: substDropped}
		case isSeq:
			st.records[i] = substitution{kind: substColumns, values: classifyAll(seq)}
		default:
			v, ok := Classify(value)
			if !ok {
				o.debugf("%s: значение не записывается (%v)", tk.text, value)
			}
			st.records[i] = substitution{kind: substScalar, value: slotValue{value: v, ok: ok}}
		}
	}
	o.debugf("общие строки: %d исходных, %d в новой таблице", len(items), len(st.items))
	return st, nil
}

func classifyAll(items []interface{}) []slotValue {
	out := make([]slotValue, len(items))
	for i, it := range items {
		v, ok := Classify(it)
		out[i] = slotValue{value: v, ok: ok}
	}
	return out
}

// newSharedString создаёт <si> с одним <t>; атрибуты берутся из tmpl.
func newSharedString(text string, tmpl *etree.Element) *etree.Element {
	var si *etree.Element
	if tmpl != nil {
		si = shallowCopy(tmpl)
	} else {
		si = etree.NewElement("si")
	}
	setText(newChild(si, "t"), text)
	return si
}

// finalize собирает итоговую таблицу: сжатые записи, затем строки пула.
// refs — число ячеек t="s" во всех листах.
func (st *stringTable) finalize(pool *StringPool, refs int) {
	removeChildren(st.root)
	for _, si := range st.items {
		st.root.AddChild(si)
	}
	tmpl := etree.NewElement("si")
	tmpl.Space = st.root.Space
	for _, s := range pool.Values() {
		st.root.AddChild(newSharedString(s, tmpl))
	}
	st.root.CreateAttr("count", strconv.Itoa(refs))
	st.root.CreateAttr("uniqueCount", strconv.Itoa(len(st.items)+pool.Len()))
}
