package xlsxtemplate

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// sanitizeJSONBlock извлекает JSON, обёрнутый в тройные кавычки ``` ... ```.
// Если таких кавычек нет, либо структура неверная, возвращает исходную строку.
var fenceRx = regexp.MustCompile("(?s)```[a-zA-Z]*\\n(.*?)```")

func sanitizeJSONBlock(s string) string {
	if !strings.Contains(s, "```") {
		return s
	}
	m := fenceRx.FindStringSubmatch(s)
	if len(m) >= 2 {
		return strings.TrimSpace(m[1])
	}
	return s
}

// DecodeData разбирает документ с данными: JSON (в том числе внутри
// ```-блока) или YAML. Результат приводится к виду, который даёт
// encoding/json: map[string]interface{} и []interface{}.
func DecodeData(b []byte) (interface{}, error) {
	s := strings.TrimSpace(sanitizeJSONBlock(string(b)))
	if s == "" {
		return nil, ErrNoData
	}
	var v interface{}
	jsonErr := json.Unmarshal([]byte(s), &v)
	if jsonErr == nil {
		return v, nil
	}
	if err := yaml.Unmarshal([]byte(s), &v); err != nil {
		return nil, fmt.Errorf("данные не являются ни JSON, ни YAML: %v; %w", jsonErr, err)
	}
	if v == nil {
		return nil, ErrNoData
	}
	return deepNormalize(v), nil
}

// deepNormalize приводит словари с нестроковыми ключами (YAML) к
// map[string]interface{} и рекурсивно обходит вложенные значения.
func deepNormalize(v interface{}) interface{} {
	switch vv := v.(type) {
	case []interface{}:
		// сохраняем исходный порядок, просто рекурсивно нормализуем элементы
		for i := range vv {
			vv[i] = deepNormalize(vv[i])
		}
		return vv
	case map[string]interface{}:
		for k, val := range vv {
			vv[k] = deepNormalize(val)
		}
		return vv
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(vv))
		for k, val := range vv {
			out[fmt.Sprintf("%v", k)] = deepNormalize(val)
		}
		return out
	default:
		return vv
	}
}
