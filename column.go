package xlsxtemplate

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ColumnName переводит 1-based индекс колонки в буквенное имя (1 → A, 27 → AA).
func ColumnName(index int) (string, error) {
	name, err := excelize.ColumnNumberToName(index)
	if err != nil {
		return "", fmt.Errorf("%w: колонка %d: %v", ErrCellReference, index, err)
	}
	return name, nil
}

// ColumnIndex возвращает 1-based индекс колонки по ссылке на ячейку.
// Цифры отбрасываются, поэтому подходят и "AA", и "AA1".
func ColumnIndex(ref string) (int, error) {
	letters := strings.TrimRight(strings.TrimSpace(ref), "0123456789")
	idx, err := excelize.ColumnNameToNumber(letters)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrCellReference, ref, err)
	}
	return idx, nil
}

// CellName собирает ссылку вида "B7".
func CellName(col, row int) (string, error) {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "", fmt.Errorf("%w: (%d, %d): %v", ErrCellReference, col, row, err)
	}
	return name, nil
}

// splitCellName оборачивает excelize.SplitCellName и возвращает колонку числом.
func splitCellName(ref string) (col, row int, err error) {
	letters, row, err := excelize.SplitCellName(ref)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q: %v", ErrCellReference, ref, err)
	}
	col, err = ColumnIndex(letters)
	if err != nil {
		return 0, 0, err
	}
	return col, row, nil
}
