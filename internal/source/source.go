// Package source загружает байты шаблона из файла или по http(s) URL.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// ErrEmptyLocation: не указан путь или URL шаблона.
var ErrEmptyLocation = errors.New("no template location provided")

// Fetch читает шаблон. URL грузится с таймаутом timeout (0 отключает его),
// ответ не 2xx считается ошибкой.
func Fetch(ctx context.Context, location string, timeout time.Duration) ([]byte, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, ErrEmptyLocation
	}
	if !IsURL(location) {
		return os.ReadFile(location)
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch the template at: %s: %w", location, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unable to fetch the template at: %s: %s", location, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// IsURL сообщает, что location является http(s) адресом.
func IsURL(location string) bool {
	l := strings.ToLower(location)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}
