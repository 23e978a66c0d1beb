package xlsxtemplate

import (
	"log"
	"time"
)

// MIMEType — тип содержимого готового xlsx.
const MIMEType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DefaultFileName — имя файла по умолчанию: "2006-01-02 - Report.xlsx".
func DefaultFileName(now time.Time) string {
	return now.Format("2006-01-02") + " - Report.xlsx"
}

// WriteResultsWithTemplate рендерит шаблон из templatePath и сохраняет
// результат в destPath. data: дерево данных либо JSON/YAML документ
// строкой или []byte.
func WriteResultsWithTemplate(templatePath, destPath string, data interface{}, opts ...Option) error {
	log.Printf("📊 Начинаем запись результатов в Excel...")
	log.Printf("📁 Шаблон: %s", templatePath)
	log.Printf("📄 Выходной файл: %s", destPath)

	startTime := time.Now()

	switch raw := data.(type) {
	case string:
		v, err := DecodeData([]byte(raw))
		if err != nil {
			log.Printf("❌ Ошибка разбора данных: %v", err)
			return err
		}
		data = v
	case []byte:
		v, err := DecodeData(raw)
		if err != nil {
			log.Printf("❌ Ошибка разбора данных: %v", err)
			return err
		}
		data = v
	}

	log.Printf("🔄 Загрузка Excel шаблона...")
	tmpl, err := LoadTemplate(templatePath, opts...)
	if err != nil {
		log.Printf("❌ Ошибка загрузки шаблона: %v", err)
		return err
	}
	log.Printf("✅ Шаблон загружен успешно")

	log.Printf("🔄 Рендеринг данных в шаблон...")
	report, err := tmpl.Render(data)
	if err != nil {
		log.Printf("❌ Ошибка рендеринга: %v", err)
		return err
	}
	log.Printf("✅ Рендеринг завершен")

	log.Printf("💾 Сохранение файла...")
	if err := report.Save(destPath); err != nil {
		log.Printf("❌ Ошибка сохранения: %v", err)
		return err
	}

	duration := time.Since(startTime)
	log.Printf("✅ Excel файл создан за %v", duration)
	log.Printf("📄 Результат сохранен в: %s", destPath)

	return nil
}
