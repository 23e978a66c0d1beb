package xlsxtemplate

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
)

const sharedStringsPart = "xl/sharedStrings.xml"

var worksheetPartRx = regexp.MustCompile(`^xl/worksheets/[^/]+\.xml$`)

// container — zip-пакет шаблона, части проиндексированы по имени.
// Шаблон только читается; результат пишется в новый архив.
type container struct {
	zr    *zip.Reader
	parts map[string]*zip.File
}

func openContainer(b []byte) (*container, error) {
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPackage, err)
	}
	c := &container{zr: zr, parts: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		c.parts[f.Name] = f
	}
	return c, nil
}

func (c *container) has(name string) bool {
	_, ok := c.parts[name]
	return ok
}

func (c *container) read(name string) ([]byte, error) {
	f, ok := c.parts[name]
	if !ok {
		return nil, fmt.Errorf("part %s not found", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, partError(name, "open", err)
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, partError(name, "read", err)
	}
	return b, nil
}

// worksheets возвращает части листов в порядке архива.
func (c *container) worksheets() []string {
	var out []string
	for _, f := range c.zr.File {
		if worksheetPartRx.MatchString(f.Name) {
			out = append(out, f.Name)
		}
	}
	return out
}

// write собирает новый архив: части из replaced пишутся заново,
// остальные копируются без перепаковки.
func (c *container) write(w io.Writer, replaced map[string][]byte) error {
	zw := zip.NewWriter(w)
	for _, f := range c.zr.File {
		content, ok := replaced[f.Name]
		if !ok {
			if err := zw.Copy(f); err != nil {
				return partError(f.Name, "copy", err)
			}
			continue
		}
		fh := f.FileHeader
		fh.CRC32, fh.CompressedSize64, fh.UncompressedSize64 = 0, 0, 0
		fh.CompressedSize, fh.UncompressedSize = 0, 0
		fh.Extra = nil
		if fh.Method != zip.Store {
			fh.Method = zip.Deflate
		}
		fw, err := zw.CreateHeader(&fh)
		if err != nil {
			return partError(f.Name, "create", err)
		}
		if _, err := fw.Write(content); err != nil {
			return partError(f.Name, "write", err)
		}
	}
	return zw.Close()
}
