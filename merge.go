package xlsxtemplate

import (
	"sort"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// updateMerges переносит объединения ячеек вслед за строками: диапазоны
// ниже размноженных строк сдвигаются, а однострочные объединения на
// размноженной строке повторяются для каждой её копии.
func (w *sheetRewriter) updateMerges(root *etree.Element) error {
	mc := root.SelectElement("mergeCells")
	if mc == nil {
		return nil
	}
	spans := append([]rowSpan(nil), w.spans...)
	sort.SliceStable(spans, func(i, j int) bool { return spans[i].tpl < spans[j].tpl })

	var out []*etree.Element
	for _, m := range mc.SelectElements("mergeCell") {
		ref := m.SelectAttrValue("ref", "")
		start, end, ok := strings.Cut(ref, ":")
		if !ok {
			end = start
		}
		c1, r1, err := splitCellName(start)
		if err != nil {
			return err
		}
		c2, r2, err := splitCellName(end)
		if err != nil {
			return err
		}

		if r1 == r2 {
			if s, found := spanOf(spans, r1); found && s.count > 1 {
				for i := 0; i < s.count; i++ {
					dup, err := mergeCell(m, c1, s.first+i, c2, s.first+i)
					if err != nil {
						return err
					}
					out = append(out, dup)
				}
				continue
			}
		}
		moved, err := mergeCell(m, c1, shiftRow(spans, r1, false), c2, shiftRow(spans, r2, true))
		if err != nil {
			return err
		}
		out = append(out, moved)
	}

	removeChildren(mc)
	for _, m := range out {
		mc.AddChild(m)
	}
	if mc.SelectAttr("count") != nil {
		mc.CreateAttr("count", strconv.Itoa(len(out)))
	}
	return nil
}

func mergeCell(tmpl *etree.Element, c1, r1, c2, r2 int) (*etree.Element, error) {
	from, err := CellName(c1, r1)
	if err != nil {
		return nil, err
	}
	to, err := CellName(c2, r2)
	if err != nil {
		return nil, err
	}
	m := shallowCopy(tmpl)
	m.CreateAttr("ref", from+":"+to)
	return m, nil
}

func spanOf(spans []rowSpan, row int) (rowSpan, bool) {
	i := sort.Search(len(spans), func(i int) bool { return spans[i].tpl >= row })
	if i < len(spans) && spans[i].tpl == row {
		return spans[i], true
	}
	return rowSpan{}, false
}

// shiftRow возвращает новый номер шаблонной строки row. Для конца
// диапазона (last=true) берётся последняя копия размноженной строки.
func shiftRow(spans []rowSpan, row int, last bool) int {
	i := sort.Search(len(spans), func(i int) bool { return spans[i].tpl > row }) - 1
	if i < 0 {
		return row
	}
	s := spans[i]
	if s.tpl == row {
		if last {
			return s.first + s.count - 1
		}
		return s.first
	}
	return row + s.first + s.count - 1 - s.tpl
}
