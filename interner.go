package xlsxtemplate

// StringPool собирает новые строки, которые будут дописаны в конец таблицы
// общих строк. Индекс k в пуле соответствует глобальному индексу base+k.
// Значения идут в порядке первого появления.
type StringPool struct {
	base   int
	values []string
	index  map[string]int
}

// NewStringPool создаёт пул, глобальные индексы которого начинаются с base.
func NewStringPool(base int) *StringPool {
	return &StringPool{base: base, index: make(map[string]int)}
}

// Intern возвращает глобальный индекс строки, добавляя её при первом появлении.
func (p *StringPool) Intern(s string) int {
	if i, ok := p.index[s]; ok {
		return p.base + i
	}
	p.values = append(p.values, s)
	i := len(p.values) - 1
	p.index[s] = i
	return p.base + i
}

// Values возвращает строки пула в порядке добавления.
func (p *StringPool) Values() []string { return p.values }

// Len возвращает число уникальных строк в пуле.
func (p *StringPool) Len() int { return len(p.values) }

// Base возвращает глобальный индекс первой строки пула.
func (p *StringPool) Base() int { return p.base }
