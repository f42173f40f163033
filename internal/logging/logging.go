// Package logging points the standard logger at a per-run log file, the
// screen, or both.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"
)

// FileTimeLayout is the timestamp used in log file names.
const FileTimeLayout = "2006-01-02 15-04-05"

// Options selects the log outputs.
type Options struct {
	Tool     string // prefix of the log file name
	ToFile   bool
	ToScreen bool
	Dir      string // directory for the log file; "" means the working directory
	Verbose  bool   // adds microseconds and file:line to each entry

	// Screen defaults to os.Stderr.
	Screen io.Writer
	// Now defaults to time.Now.
	Now func() time.Time
}

// FileName returns "<tool> - yyyy-mm-dd hh-mm-ss.log" for t.
func FileName(tool string, t time.Time) string {
	return fmt.Sprintf("%s - %s.log", tool, t.Format(FileTimeLayout))
}

// Setup configures the standard logger and returns the log file path (empty
// when not logging to a file) and a function that restores the previous
// output and closes the file.
func Setup(opt Options) (string, func(), error) {
	if opt.Screen == nil {
		opt.Screen = os.Stderr
	}
	if opt.Now == nil {
		opt.Now = time.Now
	}
	if opt.Tool == "" {
		opt.Tool = filepath.Base(os.Args[0])
	}

	prevOut, prevFlags := log.Writer(), log.Flags()
	restore := func() {
		log.SetOutput(prevOut)
		log.SetFlags(prevFlags)
	}

	var (
		writers []io.Writer
		path    string
		f       *os.File
	)
	if opt.ToFile {
		if opt.Dir != "" {
			if err := os.MkdirAll(opt.Dir, 0o755); err != nil {
				return "", nil, fmt.Errorf("create log dir: %w", err)
			}
		}
		path = filepath.Join(opt.Dir, FileName(opt.Tool, opt.Now()))
		var err error
		f, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return "", nil, fmt.Errorf("open log file: %w", err)
		}
		writers = append(writers, f)
	}
	if opt.ToScreen {
		writers = append(writers, opt.Screen)
	}

	switch len(writers) {
	case 0:
		log.SetOutput(io.Discard)
	case 1:
		log.SetOutput(writers[0])
	default:
		log.SetOutput(io.MultiWriter(writers...))
	}
	flags := log.LstdFlags
	if opt.Verbose {
		flags |= log.Lmicroseconds | log.Lshortfile
	}
	log.SetFlags(flags)

	cleanup := func() {
		restore()
		if f != nil {
			_ = f.Close()
		}
	}
	return path, cleanup, nil
}
