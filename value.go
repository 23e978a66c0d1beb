package xlsxtemplate

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// CellType — код типа ячейки (атрибут t).
type CellType string

const (
	CellString  CellType = "s"
	CellNumber  CellType = "n"
	CellBoolean CellType = "b"
	CellFormula CellType = "f"
)

const (
	// смещение между эпохой Excel 1899-12-30 и 1970-01-01 в днях
	serialEpochOffset = 25569
	msPerDay          = 86400000
)

var timeType = reflect.TypeOf(time.Time{})

// CellValue — типизированное значение для записи в ячейку.
// Для CellString значение лежит в Text, для чисел и булевых в Number.
type CellValue struct {
	Type   CellType
	Text   string
	Number float64
}

// String возвращает текст, который пишется в <v> или в общую строку.
func (v CellValue) String() string {
	if v.Type == CellString {
		return v.Text
	}
	return formatNumber(v.Number)
}

func stringValue(s string) CellValue { return CellValue{Type: CellString, Text: s} }

// Classify определяет тип значения из дерева данных.
// ok=false означает, что значение не записывается (NaN, ±Inf, нулевое время).
func Classify(v interface{}) (CellValue, bool) {
	switch vv := v.(type) {
	case nil:
		return stringValue(""), true
	case string:
		return stringValue(vv), true
	case bool:
		if vv {
			return CellValue{Type: CellBoolean, Number: 1}, true
		}
		return CellValue{Type: CellBoolean, Number: 0}, true
	case float64:
		return numberValue(vv)
	case float32:
		return numberValue(float64(vv))
	case int:
		return numberValue(float64(vv))
	case int64:
		return numberValue(float64(vv))
	case json.Number:
		f, err := vv.Float64()
		if err != nil {
			return stringValue(vv.String()), true
		}
		return numberValue(f)
	case time.Time:
		return timeValue(vv)
	case *time.Time:
		if vv == nil {
			return stringValue(""), true
		}
		return timeValue(*vv)
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return stringValue(""), true
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Bool:
		return Classify(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return numberValue(float64(rv.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return numberValue(float64(rv.Uint()))
	case reflect.Float32, reflect.Float64:
		return numberValue(rv.Float())
	case reflect.String:
		return stringValue(rv.String()), true
	case reflect.Struct:
		if rv.Type().ConvertibleTo(timeType) {
			return timeValue(rv.Convert(timeType).Interface().(time.Time))
		}
	}
	return stringValue(ValueToString(v)), true
}

func numberValue(f float64) (CellValue, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return CellValue{}, false
	}
	return CellValue{Type: CellNumber, Number: f}, true
}

func timeValue(t time.Time) (CellValue, bool) {
	if t.IsZero() {
		return CellValue{}, false
	}
	return CellValue{Type: CellNumber, Number: timeToSerial(t)}, true
}

// timeToSerial переводит время в серийную дату Excel по локальному времени
// значения (смещение зоны прибавляется к UTC).
func timeToSerial(t time.Time) float64 {
	_, offset := t.Zone()
	ms := t.UnixMilli() + int64(offset)*1000
	return serialEpochOffset + float64(ms)/msPerDay
}

// ValueToString приводит значение к тексту для подстановки в строку.
// Пустые и "ложные" значения дают пустую строку, массивы склеиваются
// через запятую, объекты сериализуются в компактный JSON.
func ValueToString(v interface{}) string {
	switch vv := v.(type) {
	case nil:
		return ""
	case string:
		return vv
	case bool:
		if vv {
			return "true"
		}
		return ""
	case float64:
		if vv == 0 || math.IsNaN(vv) {
			return ""
		}
		return formatNumber(vv)
	case json.Number:
		if f, err := vv.Float64(); err == nil {
			return ValueToString(f)
		}
		return vv.String()
	case time.Time:
		if vv.IsZero() {
			return ""
		}
		return vv.Format(time.RFC3339)
	case []interface{}:
		parts := make([]string, len(vv))
		for i, it := range vv {
			parts[i] = ValueToString(it)
		}
		return strings.Join(parts, ",")
	case map[string]interface{}:
		return marshalCompact(vv)
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return ""
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Bool:
		return ValueToString(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return ValueToString(float64(rv.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return ValueToString(float64(rv.Uint()))
	case reflect.Float32, reflect.Float64:
		return ValueToString(rv.Float())
	case reflect.String:
		return rv.String()
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
			return string(rv.Bytes())
		}
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = ValueToString(rv.Index(i).Interface())
		}
		return strings.Join(parts, ",")
	case reflect.Struct:
		if rv.Type().ConvertibleTo(timeType) {
			return ValueToString(rv.Convert(timeType).Interface())
		}
		return marshalCompact(rv.Interface())
	case reflect.Map:
		return marshalCompact(rv.Interface())
	}
	return fmt.Sprintf("%v", v)
}

func marshalCompact(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// formatNumber печатает число без лишних нулей; очень большие и очень
// маленькие значения печатаются в экспоненциальной форме.
func formatNumber(f float64) string {
	if abs := math.Abs(f); abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
