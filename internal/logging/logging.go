// Package logging holds the process-wide structured logger.
package logging

import (
	"cmp"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Logger is shared by every package. It discards until Initialize runs.
var Logger = slog.New(slog.DiscardHandler)

// Initialize configures Logger for interactive use. The terminal belongs to
// the TUI, so logs only go to a file: debugFile if set, otherwise a fresh
// file in the OS state directory with old files rotated out.
func Initialize(debug bool, debugFile string, maxLogFiles int) error {
	if os.Getenv("FOCUSNEST_DEBUG") == "1" {
		debug = true
	}
	if env := os.Getenv("FOCUSNEST_DEBUG_FILE"); env != "" && debugFile == "" {
		debugFile = env
	}

	if !debug && debugFile == "" {
		Logger = slog.New(slog.DiscardHandler)
		return nil
	}

	logFilePath := debugFile
	if logFilePath != "" {
		if err := os.MkdirAll(filepath.Dir(logFilePath), 0o755); err != nil {
			return fmt.Errorf("create log directory: %w", err)
		}
	} else {
		logDir, err := logDirectory()
		if err != nil {
			return fmt.Errorf("get log directory: %w", err)
		}
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return fmt.Errorf("create log directory: %w", err)
		}
		if maxLogFiles > 0 {
			if err := rotateLogs(logDir, maxLogFiles); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: log rotation failed: %v\n", err)
			}
		}
		logFilePath = filepath.Join(logDir, uuid.NewString()+".log")
	}

	f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	Logger = slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	Logger.Info("Debug logging initialized", "log_file", logFilePath)
	return nil
}

// InitializeServer configures Logger for the long-running servers, which
// log JSON lines to w.
func InitializeServer(w io.Writer, debug bool) {
	level := slog.LevelInfo
	if debug || os.Getenv("FOCUSNEST_DEBUG") == "1" {
		level = slog.LevelDebug
	}
	Logger = slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// rotateLogs deletes the oldest .log files so that, after one more is
// created, at most maxLogFiles remain.
func rotateLogs(logDir string, maxLogFiles int) error {
	entries, err := os.ReadDir(logDir)
	if err != nil {
		return fmt.Errorf("read log directory: %w", err)
	}

	type logFile struct {
		path    string
		modTime time.Time
	}
	var files []logFile
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".log" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, logFile{path: filepath.Join(logDir, e.Name()), modTime: info.ModTime()})
	}
	if len(files) < maxLogFiles {
		return nil
	}

	slices.SortFunc(files, func(a, b logFile) int { return cmp.Compare(a.modTime.UnixNano(), b.modTime.UnixNano()) })
	excess := len(files) - maxLogFiles + 1
	for _, f := range files[:excess] {
		if err := os.Remove(f.path); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to delete old log file %s: %v\n", f.path, err)
		}
	}
	return nil
}

func logDirectory() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Logs", "focusnest"), nil
	case "windows":
		local := os.Getenv("LOCALAPPDATA")
		if local == "" {
			local = filepath.Join(home, "AppData", "Local")
		}
		return filepath.Join(local, "focusnest", "logs"), nil
	default:
		state := os.Getenv("XDG_STATE_HOME")
		if state == "" {
			state = filepath.Join(home, ".local", "state")
		}
		return filepath.Join(state, "focusnest"), nil
	}
}
