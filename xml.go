package xlsxtemplate

import (
	"strings"

	"github.com/beevik/etree"
)

// shallowCopy копирует элемент с атрибутами, но без дочерних узлов.
func shallowCopy(e *etree.Element) *etree.Element {
	c := etree.NewElement(e.Tag)
	c.Space = e.Space
	for _, a := range e.Attr {
		c.CreateAttr(a.FullKey(), a.Value)
	}
	return c
}

// newChild создаёт дочерний элемент в том же префиксе, что и родитель.
func newChild(parent *etree.Element, tag string) *etree.Element {
	if parent.Space != "" {
		return parent.CreateElement(parent.Space + ":" + tag)
	}
	return parent.CreateElement(tag)
}

func removeChildren(e *etree.Element) {
	for i := len(e.Child) - 1; i >= 0; i-- {
		e.RemoveChildAt(i)
	}
}

// setText пишет текст в <t>, сохраняя пробелы по краям через xml:space.
func setText(t *etree.Element, text string) {
	t.SetText(text)
	if text != strings.TrimSpace(text) {
		t.CreateAttr("xml:space", "preserve")
	}
}

func parseXML(b []byte) (*etree.Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(b); err != nil {
		return nil, err
	}
	return doc, nil
}
