package xlsxtemplate

import (
	"log"
	"runtime"
)

// Options — настройки генерации.
type Options struct {
	// Resolver достаёт значения по путям плейсхолдеров (по умолчанию PathResolver).
	Resolver Resolver
	// Logger получает ход генерации; nil отключает вывод.
	Logger *log.Logger
	// Debug включает подробные строки лога по каждой части.
	Debug bool
	// Parallelism ограничивает число листов, которые разбираются и
	// сериализуются одновременно. Подстановка всегда последовательная.
	Parallelism int
}

// Option меняет Options.
type Option func(*Options)

func WithResolver(r Resolver) Option { return func(o *Options) { o.Resolver = r } }

func WithLogger(l *log.Logger) Option { return func(o *Options) { o.Logger = l } }

func WithDebug(debug bool) Option { return func(o *Options) { o.Debug = debug } }

func WithParallelism(n int) Option { return func(o *Options) { o.Parallelism = n } }

func newOptions(opts []Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if o.Resolver == nil {
		o.Resolver = PathResolver{}
	}
	if o.Parallelism <= 0 {
		o.Parallelism = runtime.GOMAXPROCS(0)
	}
	return o
}

func (o *Options) logf(format string, args ...interface{}) {
	if o == nil || o.Logger == nil {
		return
	}
	o.Logger.Printf(format, args...)
}

func (o *Options) debugf(format string, args ...interface{}) {
	if o == nil || !o.Debug {
		return
	}
	o.logf(format, args...)
}
