package webapi

import (
	"net/http"
	"os"
	"sync"

	"github.com/apex/log"
	"github.com/arsipku/arsipd/pkg/clog"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// LogController changes the level and output of the global logger at
// runtime.
type LogController struct {
	mu              sync.Mutex
	CurrentLogLevel string `json:"current_log_level"`
	CurrentLogFile  string `json:"current_log_file"`
}

func NewLogController(level string) *LogController {
	return &LogController{CurrentLogLevel: level, CurrentLogFile: "stdout"}
}

type logRequest struct {
	LogLevel  string `json:"log_level" validate:"omitempty,oneof=debug info warn warning error fatal"`
	LogOutput string `json:"log_output"`
}

// SetLogging applies the level and output of the request; empty fields are
// left as they are. If the output cannot be opened the old level is restored.
func (c *LogController) SetLogging(ctx echo.Context) error {
	var req logRequest
	if err := bindAndValidate(ctx, &req); err != nil {
		return respondError(ctx, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	oldLevel := c.CurrentLogLevel
	if req.LogLevel != "" {
		if err := c.setLoggingLevel(req.LogLevel); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}

	if req.LogOutput != "" {
		if err := c.setLoggingOutput(req.LogOutput); err != nil {
			_ = c.setLoggingLevel(oldLevel)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}

	return ctx.JSON(http.StatusOK, c)
}

func (c *LogController) ShowCurrentLogging(ctx echo.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return ctx.JSON(http.StatusOK, c)
}

func (c *LogController) setLoggingLevel(logLevel string) error {
	level, err := log.ParseLevel(logLevel)
	if err != nil {
		return errors.Wrapf(err, "invalid log level %s", logLevel)
	}

	if err := clog.SetGlobalLoggerLevelFromString(logLevel); err != nil {
		return err
	}

	c.CurrentLogLevel = level.String()
	return nil
}

func (c *LogController) setLoggingOutput(logOutput string) error {
	var w *os.File
	switch logOutput {
	case "stdout":
		w = os.Stdout
	case "stderr":
		w = os.Stderr
	default:
		f, err := os.OpenFile(logOutput, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return errors.Wrapf(err, "failed to open log output %s", logOutput)
		}
		w = f
	}

	if err := clog.SetGlobalOutput(w); err != nil {
		if w != os.Stdout && w != os.Stderr {
			_ = w.Close()
		}
		return err
	}

	c.CurrentLogFile = logOutput
	return nil
}
