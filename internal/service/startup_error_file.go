package service

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// StartupErrorFileName is the file WriteStartupErrorFile writes.
const StartupErrorFileName = "startup-error.log"

// WriteStartupErrorFile records a startup error in dir so that it survives
// even when the logger could not be initialized. Only the most recent error
// is kept. It returns the written path, or "" if nothing could be written.
func WriteStartupErrorFile(dir string, err error) string {
	if mkErr := os.MkdirAll(dir, 0755); mkErr != nil {
		return ""
	}

	path := filepath.Join(dir, StartupErrorFileName)
	f, ferr := os.Create(path)
	if ferr != nil {
		return ""
	}
	defer f.Close()

	ts := time.Now().Format("2006-01-02 15:04:05")
	if _, werr := fmt.Fprintf(f, "[%s] STARTUP ERROR\n%v\n", ts, err); werr != nil {
		return ""
	}
	return path
}
