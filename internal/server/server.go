// Package server — HTTP-сервис генерации отчётов: принимает шаблон и
// данные, отдаёт готовый xlsx как вложение.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nikitaxru/xlsxtemplate"
	"github.com/nikitaxru/xlsxtemplate/internal/source"
)

const maxUploadSize = 32 << 20

// Server — HTTP-обёртка над xlsxtemplate.
type Server struct {
	router *chi.Mux
	cfg    *xlsxtemplate.Config
	logger *log.Logger
	now    func() time.Time
}

// New собирает роутер. logger может быть nil.
func New(cfg *xlsxtemplate.Config, logger *log.Logger) *Server {
	if cfg == nil {
		cfg = xlsxtemplate.DefaultConfig()
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	s := &Server{router: chi.NewRouter(), cfg: cfg, logger: logger, now: time.Now}
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Post("/render", s.handleRender)
	return s
}

// Handler возвращает http.Handler сервиса.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe слушает cfg.Addr до отмены ctx.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{Addr: s.cfg.Addr, Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Printf("🚀 Сервис слушает %s", s.cfg.Addr)
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok")
}

// handleRender принимает multipart-форму:
//   - template: файл шаблона, либо template_url: адрес шаблона;
//   - data: JSON/YAML документ (поле или файл);
//   - filename: имя результата (необязательно).
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, fmt.Sprintf("invalid form: %v", err), http.StatusBadRequest)
		return
	}

	tmpl, err := s.templateBytes(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	rawData, err := formValueOrFile(r, "data")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	data, err := xlsxtemplate.DecodeData(rawData)
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid data: %v", err), http.StatusBadRequest)
		return
	}

	out, err := xlsxtemplate.Generate(r.Context(), tmpl, data, s.cfg.Options(s.logger)...)
	if err != nil {
		s.logger.Printf("❌ Ошибка рендеринга: %v", err)
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	name := r.FormValue("filename")
	if name == "" {
		name = xlsxtemplate.DefaultFileName(s.now())
	}
	w.Header().Set("Content-Type", xlsxtemplate.MIMEType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	_, _ = w.Write(out)
}

func (s *Server) templateBytes(r *http.Request) ([]byte, error) {
	if u := r.FormValue("template_url"); u != "" {
		if !source.IsURL(u) {
			return nil, fmt.Errorf("template_url must be an http(s) URL")
		}
		return source.Fetch(r.Context(), u, s.cfg.FetchTimeout)
	}
	b, err := formFile(r, "template")
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, xlsxtemplate.ErrNoTemplate
	}
	return b, nil
}

func formValueOrFile(r *http.Request, field string) ([]byte, error) {
	if v := r.FormValue(field); v != "" {
		return []byte(v), nil
	}
	b, err := formFile(r, field)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, xlsxtemplate.ErrNoData
	}
	return b, nil
}

// formFile возвращает содержимое файла из формы или nil, если поля нет.
func formFile(r *http.Request, field string) ([]byte, error) {
	f, _, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer func(f multipart.File) { _ = f.Close() }(f)
	return io.ReadAll(f)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, xlsxtemplate.ErrNoTemplate),
		errors.Is(err, xlsxtemplate.ErrNoData),
		errors.Is(err, xlsxtemplate.ErrInvalidPackage):
		return http.StatusBadRequest
	case errors.Is(err, xlsxtemplate.ErrNoSharedStrings),
		errors.Is(err, xlsxtemplate.ErrNoStringTable),
		errors.Is(err, xlsxtemplate.ErrNoSheetData),
		errors.Is(err, xlsxtemplate.ErrRowNumber),
		errors.Is(err, xlsxtemplate.ErrCellReference),
		errors.Is(err, xlsxtemplate.ErrSharedIndex):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
