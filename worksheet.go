package xlsxtemplate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

type cellKind int

const (
	cellClone   cellKind = iota // ячейка без подстановки, копируется целиком
	cellFormula                 // формула: копия без кэшированного <v>
	cellShared                  // t="s" с индексом из новой таблицы строк
	cellValue                   // типизированное значение
	cellBlank                   // значение не задано, остаются только атрибуты
)

type cellDesc struct {
	kind  cellKind
	tmpl  *etree.Element
	value CellValue
	index int
}

// cellSlot — содержимое одной колонки шаблонной строки. Для table-слотов
// table[i] попадает в i-ю выводимую строку.
type cellSlot struct {
	fixed   *cellDesc
	table   []*cellDesc
	isTable bool
}

func (s cellSlot) at(i int) *cellDesc {
	if !s.isTable {
		return s.fixed
	}
	if i < len(s.table) {
		return s.table[i]
	}
	return nil
}

// rowSpan — куда попала шаблонная строка tpl: строки first..first+count-1.
type rowSpan struct {
	tpl, first, count int
}

type sheetRewriter struct {
	part  string
	st    *stringTable
	pool  *StringPool
	opts  *Options
	refs  int // ячейки t="s"
	spans []rowSpan

	minCol, minRow, maxCol, maxRow int
}

// rewriteWorksheet перестраивает <sheetData> листа: подставляет значения,
// размножает строки для table-плейсхолдеров и колонки для массивов,
// перенумеровывает строки и ячейки.
func rewriteWorksheet(part string, doc *etree.Document, st *stringTable, pool *StringPool, o *Options) (int, error) {
	root := doc.Root()
	if root == nil {
		return 0, partError(part, "rewrite", ErrNoSheetData)
	}
	sheetData := root.SelectElement("sheetData")
	if sheetData == nil {
		return 0, partError(part, "rewrite", ErrNoSheetData)
	}
	w := &sheetRewriter{part: part, st: st, pool: pool, opts: o}

	var out []*etree.Element
	rowOffset := 0
	for _, row := range sheetData.SelectElements("row") {
		rowNum, err := strconv.Atoi(row.SelectAttrValue("r", ""))
		if err != nil || rowNum < 1 {
			return 0, partError(part, "rewrite", fmt.Errorf("%w: %q", ErrRowNumber, row.SelectAttrValue("r", "")))
		}
		slots, err := w.collect(row)
		if err != nil {
			return 0, partError(part, fmt.Sprintf("row %d", rowNum), err)
		}
		expansion := 0
		for _, s := range slots {
			if s.isTable && len(s.table) > expansion {
				expansion = len(s.table)
			}
		}
		count := expansion
		if count == 0 {
			count = 1
		}
		first := rowNum + rowOffset
		for i := 0; i < count; i++ {
			r, err := w.materializeRow(row, slots, first+i, i)
			if err != nil {
				return 0, partError(part, fmt.Sprintf("row %d", rowNum), err)
			}
			out = append(out, r)
		}
		w.spans = append(w.spans, rowSpan{tpl: rowNum, first: first, count: count})
		if expansion > 0 {
			rowOffset += expansion - 1
		}
	}

	removeChildren(sheetData)
	for _, r := range out {
		sheetData.AddChild(r)
	}
	w.updateDimension(root)
	if err := w.updateMerges(root); err != nil {
		return 0, partError(part, "merge cells", err)
	}
	o.debugf("%s: %d строк шаблона → %d строк", part, len(w.spans), len(out))
	return w.refs, nil
}

// collect раскладывает ячейки шаблонной строки по колонкам.
func (w *sheetRewriter) collect(row *etree.Element) ([]cellSlot, error) {
	type placed struct {
		col  int
		slot cellSlot
	}
	var cells []placed
	maxCol := 0
	put := func(col int, s cellSlot) {
		cells = append(cells, placed{col: col, slot: s})
		if col > maxCol {
			maxCol = col
		}
	}

	prevCol, colOffset := 0, 0
	for _, c := range row.SelectElements("c") {
		col := prevCol + 1
		if ref := c.SelectAttrValue("r", ""); ref != "" {
			var err error
			if col, err = ColumnIndex(ref); err != nil {
				return nil, err
			}
		}
		prevCol = col
		col += colOffset

		if c.SelectElement("f") != nil {
			put(col, cellSlot{fixed: &cellDesc{kind: cellFormula, tmpl: c}})
			continue
		}
		if c.SelectAttrValue("t", "") != string(CellString) {
			put(col, cellSlot{fixed: &cellDesc{kind: cellClone, tmpl: c}})
			continue
		}

		rec, err := w.record(c)
		if err != nil {
			return nil, err
		}
		switch rec.kind {
		case substShared:
			put(col, cellSlot{fixed: &cellDesc{kind: cellShared, tmpl: c, index: rec.index}})
		case substScalar:
			put(col, cellSlot{fixed: valueDesc(c, rec.value)})
		case substColumns:
			for k, v := range rec.values {
				put(col+k, cellSlot{fixed: valueDesc(c, v)})
				if k > 0 {
					colOffset++
				}
			}
		case substTable:
			s := cellSlot{isTable: true, table: make([]*cellDesc, len(rec.values))}
			for k, v := range rec.values {
				s.table[k] = valueDesc(c, v)
			}
			put(col, s)
		case substDropped:
		}
	}

	slots := make([]cellSlot, maxCol+1)
	for _, p := range cells {
		slots[p.col] = p.slot
	}
	return slots, nil
}

// record находит запись подстановки по индексу из <v> ячейки.
func (w *sheetRewriter) record(c *etree.Element) (substitution, error) {
	var raw string
	if v := c.SelectElement("v"); v != nil {
		raw = strings.TrimSpace(v.Text())
	}
	idx, err := strconv.Atoi(raw)
	if err != nil || idx < 0 || idx >= len(w.st.records) {
		return substitution{}, fmt.Errorf("%w: %q", ErrSharedIndex, raw)
	}
	return w.st.records[idx], nil
}

func valueDesc(tmpl *etree.Element, v slotValue) *cellDesc {
	if !v.ok {
		return &cellDesc{kind: cellBlank, tmpl: tmpl}
	}
	return &cellDesc{kind: cellValue, tmpl: tmpl, value: v.value}
}

func (w *sheetRewriter) materializeRow(tmpl *etree.Element, slots []cellSlot, rowNum, i int) (*etree.Element, error) {
	row := shallowCopy(tmpl)
	row.CreateAttr("r", strconv.Itoa(rowNum))
	first, last := 0, 0
	for col := 1; col < len(slots); col++ {
		d := slots[col].at(i)
		if d == nil {
			continue
		}
		cell, err := w.materializeCell(d, rowNum, col)
		if err != nil {
			return nil, err
		}
		row.AddChild(cell)
		if first == 0 {
			first = col
		}
		last = col
	}
	if row.SelectAttr("spans") != nil {
		if first == 0 {
			row.RemoveAttr("spans")
		} else {
			row.CreateAttr("spans", fmt.Sprintf("%d:%d", first, last))
		}
	}
	return row, nil
}

// materializeCell создаёт ячейку вывода по описанию d.
func (w *sheetRewriter) materializeCell(d *cellDesc, rowNum, col int) (*etree.Element, error) {
	ref, err := CellName(col, rowNum)
	if err != nil {
		return nil, err
	}
	w.track(col, rowNum)

	var cell *etree.Element
	switch d.kind {
	case cellClone:
		cell = d.tmpl.Copy()
	case cellFormula:
		cell = d.tmpl.Copy()
		for _, v := range cell.SelectElements("v") {
			cell.RemoveChild(v)
		}
	case cellShared:
		cell = shallowCopy(d.tmpl)
		cell.CreateAttr("t", string(CellString))
		newChild(cell, "v").SetText(strconv.Itoa(d.index))
		w.refs++
	case cellValue:
		cell = shallowCopy(d.tmpl)
		text := d.value.String()
		if d.value.Type == CellString {
			text = strconv.Itoa(w.pool.Intern(text))
			w.refs++
		}
		cell.CreateAttr("t", string(d.value.Type))
		newChild(cell, "v").SetText(text)
	case cellBlank:
		cell = shallowCopy(d.tmpl)
		cell.RemoveAttr("t")
	}
	cell.CreateAttr("r", ref)
	return cell, nil
}

func (w *sheetRewriter) track(col, row int) {
	if w.minCol == 0 || col < w.minCol {
		w.minCol = col
	}
	if w.minRow == 0 || row < w.minRow {
		w.minRow = row
	}
	if col > w.maxCol {
		w.maxCol = col
	}
	if row > w.maxRow {
		w.maxRow = row
	}
}

// updateDimension пересчитывает <dimension ref>, если он есть в листе.
func (w *sheetRewriter) updateDimension(root *etree.Element) {
	dim := root.SelectElement("dimension")
	if dim == nil || w.maxCol == 0 {
		return
	}
	from, err1 := CellName(w.minCol, w.minRow)
	to, err2 := CellName(w.maxCol, w.maxRow)
	if err1 != nil || err2 != nil {
		return
	}
	if from == to {
		dim.CreateAttr("ref", from)
		return
	}
	dim.CreateAttr("ref", from+":"+to)
}
