package xlsxtemplate

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/require"
)

const mainNS = `xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"`

type part struct {
	name string
	body string
}

// buildPackage собирает минимальный zip в заданном порядке частей.
func buildPackage(t *testing.T, parts ...part) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range parts {
		w, err := zw.Create(p.name)
		require.NoError(t, err)
		_, err = io.WriteString(w, p.body)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func partNames(t *testing.T, pkg []byte) []string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(pkg), int64(len(pkg)))
	require.NoError(t, err)
	names := make([]string, len(zr.File))
	for i, f := range zr.File {
		names[i] = f.Name
	}
	return names
}

func readPart(t *testing.T, pkg []byte, name string) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(pkg), int64(len(pkg)))
	require.NoError(t, err)
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(b)
	}
	t.Fatalf("part %s not found", name)
	return ""
}

func mustParse(t *testing.T, s string) *etree.Document {
	t.Helper()
	doc, err := parseXML([]byte(s))
	require.NoError(t, err)
	return doc
}

func sstXML(items ...string) string {
	var b bytes.Buffer
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	b.WriteString(`<sst ` + mainNS + `>`)
	for _, it := range items {
		b.WriteString(it)
	}
	b.WriteString(`</sst>`)
	return b.String()
}

func si(text string) string { return `<si><t>` + text + `</t></si>` }

func sheetXML(body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" +
		`<worksheet ` + mainNS + `>` + body + `</worksheet>`
}

// cellsOf возвращает ячейки листа как ref → элемент.
func cellsOf(root *etree.Element) map[string]*etree.Element {
	out := map[string]*etree.Element{}
	for _, row := range root.SelectElement("sheetData").SelectElements("row") {
		for _, c := range row.SelectElements("c") {
			out[c.SelectAttrValue("r", "")] = c
		}
	}
	return out
}

func cellV(c *etree.Element) string {
	if c == nil {
		return ""
	}
	if v := c.SelectElement("v"); v != nil {
		return v.Text()
	}
	return ""
}
