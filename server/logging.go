package server

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

// setupLogging configures the HTTP request logger middleware.
func setupLogging(app *fiber.App, logFile string) error {
	f, err := openLogFile(logFile)
	if err != nil {
		return err
	}

	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path} | ${ip}\n",
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Local",
		Output:     f,
	}))

	return nil
}

// setupErrorLogging creates a logger for application errors.
func setupErrorLogging(logFile string) (*log.Logger, error) {
	f, err := openLogFile(logFile)
	if err != nil {
		return nil, err
	}

	errLogger := log.Default()
	errLogger.SetOutput(f)
	return errLogger, nil
}

func openLogFile(logFile string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(logFile), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		// Fall back to stdout if the file cannot be opened.
		log.Printf("Warning: could not open log file %s: %v", logFile, err)
		return os.Stdout, nil
	}
	return f, nil
}
