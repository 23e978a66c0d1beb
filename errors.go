package xlsxtemplate

import (
	"errors"
	"fmt"
)

var (
	// ErrNoTemplate: байты шаблона не переданы или пусты.
	ErrNoTemplate = errors.New("xlsxtemplate: template is empty")
	// ErrNoData: корень данных не передан.
	ErrNoData = errors.New("xlsxtemplate: data is empty")
	// ErrInvalidPackage: шаблон не является zip-контейнером.
	ErrInvalidPackage = errors.New("xlsxtemplate: invalid package")
	// ErrNoSharedStrings: в контейнере нет xl/sharedStrings.xml.
	ErrNoSharedStrings = errors.New("xlsxtemplate: shared strings part not found")
	// ErrNoStringTable: в части общих строк нет корня <sst>.
	ErrNoStringTable = errors.New("xlsxtemplate: <sst> root not found")
	// ErrNoSheetData: в листе нет <sheetData>.
	ErrNoSheetData = errors.New("xlsxtemplate: <sheetData> not found")
	// ErrRowNumber: у строки нет корректного атрибута r.
	ErrRowNumber = errors.New("xlsxtemplate: row has no valid 'r' attribute")
	// ErrCellReference: ссылка на ячейку не разбирается.
	ErrCellReference = errors.New("xlsxtemplate: invalid cell reference")
	// ErrSharedIndex: ячейка ссылается на несуществующую общую строку.
	ErrSharedIndex = errors.New("xlsxtemplate: shared string index out of range")
)

// PartError привязывает структурную ошибку к части контейнера.
type PartError struct {
	Part string
	Op   string
	Err  error
}

func (e *PartError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s (%s): %v", e.Part, e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Part, e.Err)
}

func (e *PartError) Unwrap() error { return e.Err }

func partError(part, op string, err error) error {
	if err == nil {
		return nil
	}
	return &PartError{Part: part, Op: op, Err: err}
}
