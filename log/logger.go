// Package log is a thin layer over the standard logger. Messages carry
// their level as a [level] prefix and the filter drops everything below
// the configured minimum level.
package log

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"sync"
	"time"
)

type Logger interface {
	Println(v ...interface{})
	Printf(format string, v ...interface{})
}

var DefaultLogger *log.Logger
var defaultFilter *logFilter

type Level string

const (
	LDebug    = Level("debug")
	LProgress = Level("progress")
	LStep     = Level("step")
	LInfo     = Level("info")
	LWarn     = Level("warn")
	LError    = Level("error")
	LFatal    = Level("fatal")
)

var levels = []Level{LDebug, LProgress, LStep, LInfo, LWarn, LError, LFatal}

func init() {
	defaultFilter = newLogFilter(os.Stderr, LProgress)
	DefaultLogger = log.New(defaultFilter, "", 0)
}

type logFilter struct {
	mu        sync.Mutex
	start     time.Time
	writer    io.Writer
	badLevels map[Level]struct{}
	minLevel  Level
	clock     func() time.Time
}

func newLogFilter(w io.Writer, minLevel Level) *logFilter {
	f := &logFilter{
		start:    time.Now(),
		writer:   w,
		minLevel: minLevel,
		clock:    time.Now,
	}
	f.init()
	return f
}

func (f *logFilter) init() {
	badLevels := make(map[Level]struct{})
	for _, level := range levels {
		if level == f.minLevel {
			break
		}
		badLevels[level] = struct{}{}
	}
	f.badLevels = badLevels
}

func (f *logFilter) setMinLevel(lvl Level) {
	f.mu.Lock()
	f.minLevel = lvl
	f.init()
	f.mu.Unlock()
}

// levelOf returns the level of the first [..] group of line, or an
// empty level for lines without one. Unknown levels are never filtered.
func levelOf(line []byte) Level {
	x := bytes.IndexByte(line, '[')
	if x < 0 {
		return ""
	}
	y := bytes.IndexByte(line[x:], ']')
	if y < 0 {
		return ""
	}
	return Level(line[x+1 : x+y])
}

func (f *logFilter) check(line []byte) bool {
	_, ok := f.badLevels[levelOf(line)]
	return !ok
}

func (f *logFilter) Write(p []byte) (n int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.check(p) {
		return len(p), nil
	}
	// The Go log package always guarantees that we only
	// get a single line.
	b := bytes.Buffer{}
	now := f.clock()

	d := now.Sub(f.start)
	fmt.Fprintf(&b, "[%s] %d:%02d:%02d ",
		now.Format(time.RFC3339),
		int(d.Hours()),
		int(math.Mod(d.Minutes(), 60)),
		int(math.Mod(d.Seconds(), 60)),
	)
	b.Write(p)

	if _, err := f.writer.Write(b.Bytes()); err != nil {
		return 0, err
	}
	return len(p), nil
}

func SetMinLevel(lvl Level) {
	defaultFilter.setMinLevel(lvl)
}

// SetQuiet hides progress and step messages.
func SetQuiet(quiet bool) {
	if quiet {
		SetMinLevel(LInfo)
	} else {
		SetMinLevel(LProgress)
	}
}

func Println(v ...interface{}) {
	DefaultLogger.Println(v...)
}

func Printf(format string, v ...interface{}) {
	DefaultLogger.Printf(format, v...)
}

func Fatal(v ...interface{}) {
	DefaultLogger.Fatal(v...)
}

func Fatalf(format string, v ...interface{}) {
	DefaultLogger.Fatalf(format, v...)
}

func Step(name string) func() {
	start := time.Now()
	Println("[step] Starting:", name)
	return func() {
		Printf("[step] Finished: %s in %s", name, time.Since(start))
	}
}
