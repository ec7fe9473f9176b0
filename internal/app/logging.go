package app

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"klinebot/internal/config"
	"klinebot/internal/logger"
)

// SetupLogging applies level and format and tees output into app.log_path
// when set. The returned file, if any, must be closed by the caller.
func SetupLogging(cfg config.AppConfig) (*os.File, error) {
	logger.SetLevel(cfg.LogLevel)
	logger.SetFormat(cfg.LogFormat)
	trimmed := strings.TrimSpace(cfg.LogPath)
	if trimmed == "" {
		return nil, nil
	}
	dir := filepath.Dir(trimmed)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	file, err := os.OpenFile(trimmed, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	mw := io.MultiWriter(os.Stderr, file)
	log.SetOutput(mw)
	logger.SetOutput(mw)
	return file, nil
}
