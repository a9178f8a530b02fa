package clog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/apex/log"
)

// GlobalLoggerCtx names the logger every unregistered context writes through.
const GlobalLoggerCtx = "global"

// ContextLogger holds the global logger and any number of loggers bound to a
// named context, for example the migration of one transfer process. Context
// loggers follow the level of the global logger at the time they are added.
type ContextLogger struct {
	mu       sync.RWMutex
	global   *log.Logger
	contexts map[string]*log.Logger
}

func NewContextLogger(w io.WriteCloser) *ContextLogger {
	return &ContextLogger{
		global:   &log.Logger{Handler: NewHandler(w), Level: log.InfoLevel},
		contexts: make(map[string]*log.Logger),
	}
}

// AddLoggingContext sends entries for ctx to w. A context that is already
// registered has its previous writer closed.
func (l *ContextLogger) AddLoggingContext(ctx string, w io.WriteCloser) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if existing, ok := l.contexts[ctx]; ok {
		handlerOf(existing).Close()
	}

	l.contexts[ctx] = &log.Logger{Handler: NewHandler(w), Level: l.global.Level}
}

// AddFileContext appends the entries for ctx to dir/ctx.log.
func (l *ContextLogger) AddFileContext(ctx, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	path := filepath.Join(dir, ctx+".log")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return "", err
	}

	l.AddLoggingContext(ctx, f)
	return path, nil
}

func (l *ContextLogger) RemoveLoggingContext(ctx string) {
	l.mu.Lock()
	logger, ok := l.contexts[ctx]
	delete(l.contexts, ctx)
	l.mu.Unlock()

	if ok {
		handlerOf(logger).Close()
	}
}

func (l *ContextLogger) SetGlobalLoggerLevelFromString(s string) error {
	level, err := log.ParseLevel(s)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.global.Level = level
	for _, logger := range l.contexts {
		logger.Level = level
	}

	return nil
}

func (l *ContextLogger) GlobalLevel() log.Level {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.global.Level
}

func (l *ContextLogger) SetOutput(ctx string, w io.WriteCloser) error {
	logger := l.lookup(ctx)
	if logger == nil {
		return fmt.Errorf("no such logging context %s", ctx)
	}

	handlerOf(logger).SetOutput(w)
	return nil
}

// UsingCtx returns an entry tagged with ctx.
func (l *ContextLogger) UsingCtx(ctx string) *log.Entry {
	if logger := l.lookup(ctx); logger != nil {
		return logger.WithField("ctx", ctx)
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.global.WithField("ctx", ctx)
}

func (l *ContextLogger) Global() *log.Entry {
	return l.UsingCtx(GlobalLoggerCtx)
}

func (l *ContextLogger) lookup(ctx string) *log.Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if ctx == GlobalLoggerCtx {
		return l.global
	}
	return l.contexts[ctx]
}

func handlerOf(logger *log.Logger) *Handler {
	h, ok := logger.Handler.(*Handler)
	if !ok {
		// Only NewHandler handlers are ever installed.
		panic(fmt.Sprintf("clog: unexpected handler %T", logger.Handler))
	}
	return h
}
