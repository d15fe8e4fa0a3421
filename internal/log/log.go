package log

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/apex/log"
)

// InitLogger sets up Apex with the CLI handler. The level comes from the
// BUILDCACHE_LOG env variable, defaulting to INFO; verbose forces DEBUG.
func InitLogger(verbose bool) {
	log.SetHandler(NewCustomHandler(os.Stderr))
	log.SetLevel(Level(os.Getenv("BUILDCACHE_LOG"), verbose))
}

// Level resolves the log level from an env value and the verbose flag
func Level(env string, verbose bool) log.Level {
	if verbose {
		return log.DebugLevel
	}

	level, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(env)))
	if err != nil {
		return log.InfoLevel
	}

	return level
}

// CustomHandler formats log entries as "LEVEL message key=value"
type CustomHandler struct {
	mu sync.Mutex
	w  io.Writer
}

// NewCustomHandler creates a handler writing to w
func NewCustomHandler(w io.Writer) *CustomHandler {
	return &CustomHandler{w: w}
}

// HandleLog implements the log.Handler interface
func (h *CustomHandler) HandleLog(e *log.Entry) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%-5s %s", strings.ToUpper(e.Level.String()), e.Message)

	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Fprintf(&b, " %s=%v", name, e.Fields[name])
	}

	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := io.WriteString(h.w, b.String())
	return err
}
