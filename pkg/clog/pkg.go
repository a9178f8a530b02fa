// Package clog is the process wide logger. Entries carry a ctx field; the
// transfer workflow uses one context per process ("pemindahan-<uuid>") so
// that a migration can also be captured in its own file.
package clog

import (
	"io"
	"os"

	"github.com/apex/log"
)

var std = NewContextLogger(os.Stdout)

func UsingCtx(ctx string) *log.Entry { return std.UsingCtx(ctx) }

func Global() *log.Entry { return std.Global() }

func SetGlobalLoggerLevelFromString(s string) error {
	return std.SetGlobalLoggerLevelFromString(s)
}

func GlobalLevel() log.Level { return std.GlobalLevel() }

func SetGlobalOutput(w io.WriteCloser) error {
	return std.SetOutput(GlobalLoggerCtx, w)
}

// CaptureToFile sends entries for ctx to dir/ctx.log instead of the global
// output until release is called.
func CaptureToFile(ctx, dir string) (release func(), err error) {
	if _, err := std.AddFileContext(ctx, dir); err != nil {
		return nil, err
	}

	return func() { std.RemoveLoggingContext(ctx) }, nil
}
