package xlsxtemplate

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/beevik/etree"
	"golang.org/x/sync/errgroup"
)

// Движок шаблонов xlsx с плейсхолдерами ${...} в тексте ячеек.
// Поддержка:
// - ${path}        — значение по пути; массив раскрывается вправо по колонкам
// - ${table:path}  — массив раскрывается вниз, строка шаблона повторяется
// - текст со вставками "Hello ${name}!" и rich text
// Формулы, стили и все прочие части пакета сохраняются как есть.

// Template — загруженный шаблон. Сам шаблон не меняется, каждый Render
// строит новый пакет, поэтому один Template можно рендерить многократно.
type Template struct {
	c    *container
	opts *Options
}

// LoadTemplate читает шаблон из файла.
func LoadTemplate(path string, opts ...Option) (*Template, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewTemplate(b, opts...)
}

// NewTemplate открывает шаблон из байтов.
func NewTemplate(b []byte, opts ...Option) (*Template, error) {
	if len(b) == 0 {
		return nil, ErrNoTemplate
	}
	c, err := openContainer(b)
	if err != nil {
		return nil, err
	}
	return &Template{c: c, opts: newOptions(opts)}, nil
}

// Generate рендерит шаблон из байтов в один вызов.
func Generate(ctx context.Context, template []byte, data interface{}, opts ...Option) ([]byte, error) {
	t, err := NewTemplate(template, opts...)
	if err != nil {
		return nil, err
	}
	r, err := t.RenderContext(ctx, data)
	if err != nil {
		return nil, err
	}
	return r.Bytes(), nil
}

// Report — готовый xlsx.
type Report struct {
	data []byte
}

func (r *Report) Bytes() []byte { return r.data }

func (r *Report) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(r.data)
	return int64(n), err
}

// Save сохраняет файл
func (r *Report) Save(path string) error { return os.WriteFile(path, r.data, 0o644) }

// Render подставляет данные в шаблон.
func (t *Template) Render(data interface{}) (*Report, error) {
	return t.RenderContext(context.Background(), data)
}

// RenderContext работает как Render, контекст ограничивает разбор и
// сериализацию листов.
func (t *Template) RenderContext(ctx context.Context, data interface{}) (*Report, error) {
	if data == nil {
		return nil, ErrNoData
	}
	o := t.opts
	if !t.c.has(sharedStringsPart) {
		return nil, ErrNoSharedStrings
	}
	raw, err := t.c.read(sharedStringsPart)
	if err != nil {
		return nil, err
	}
	sstDoc, err := parseXML(raw)
	if err != nil {
		return nil, partError(sharedStringsPart, "parse", err)
	}

	sheets := t.c.worksheets()
	docs, err := t.parseSheets(ctx, sheets)
	if err != nil {
		return nil, err
	}

	st, err := classifySharedStrings(sstDoc, data, o.Resolver, o)
	if err != nil {
		return nil, partError(sharedStringsPart, "classify", err)
	}

	// листы зависят от полной таблицы подстановок и общего пула строк,
	// поэтому переписываются строго по очереди
	pool := NewStringPool(len(st.items))
	refs := 0
	for i, name := range sheets {
		n, err := rewriteWorksheet(name, docs[i], st, pool, o)
		if err != nil {
			return nil, err
		}
		refs += n
	}
	st.finalize(pool, refs)
	o.logf("✅ Подстановка завершена: листов %d, новых строк в таблице %d", len(sheets), pool.Len())

	replaced, err := t.encodeParts(ctx, append(sheets, sharedStringsPart), append(docs, sstDoc))
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := t.c.write(&buf, replaced); err != nil {
		return nil, fmt.Errorf("сборка пакета: %w", err)
	}
	return &Report{data: buf.Bytes()}, nil
}

func (t *Template) parseSheets(ctx context.Context, sheets []string) ([]*etree.Document, error) {
	docs := make([]*etree.Document, len(sheets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.opts.Parallelism)
	for i, name := range sheets {
		i, name := i, name
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			b, err := t.c.read(name)
			if err != nil {
				return err
			}
			doc, err := parseXML(b)
			if err != nil {
				return partError(name, "parse", err)
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

func (t *Template) encodeParts(ctx context.Context, names []string, docs []*etree.Document) (map[string][]byte, error) {
	out := make([][]byte, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.opts.Parallelism)
	for i, doc := range docs {
		i, doc := i, doc
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			b, err := doc.WriteToBytes()
			if err != nil {
				return partError(names[i], "serialize", err)
			}
			out[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	replaced := make(map[string][]byte, len(names))
	for i, name := range names {
		replaced[name] = out[i]
	}
	return replaced, nil
}
