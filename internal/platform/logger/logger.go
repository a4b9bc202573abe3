// Package logger: logs estructurados clave=valor (texto) o una línea JSON por entrada.
package logger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
	off
)

var levelNames = [...]string{Debug: "debug", Info: "info", Warn: "warn", Error: "error"}

var levelByName = map[string]Level{
	"debug":   Debug,
	"info":    Info,
	"warn":    Warn,
	"warning": Warn,
	"error":   Error,
}

// ParseLevel no falla: lo desconocido cae en Info.
func ParseLevel(s string) Level {
	if lvl, ok := levelByName[strings.ToLower(strings.TrimSpace(s))]; ok {
		return lvl
	}
	return Info
}

func (l Level) String() string {
	if l < Debug || l >= off {
		return levelNames[Info]
	}
	return levelNames[l]
}

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

func ParseFormat(s string) Format {
	if strings.EqualFold(strings.TrimSpace(s), string(FormatJSON)) {
		return FormatJSON
	}
	return FormatText
}

// Logger es lo que reciben el registro, los gateways y el middleware HTTP.
type Logger interface {
	With(fields map[string]any) Logger

	Debug(msg string, fields map[string]any)
	Info(msg string, fields map[string]any)
	Warn(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)
}

type Options struct {
	Level  Level
	Format Format
	App    string

	// nil = stdout
	Output io.Writer
}

// sink serializa escrituras; lo comparten todos los hijos de With.
type sink struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *sink) writeLine(b []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = s.w.Write(append(b, '\n'))
}

type fieldLogger struct {
	out    *sink
	min    Level
	format Format
	fields map[string]any
	clock  func() time.Time
}

func New(opts Options) Logger {
	w := opts.Output
	if w == nil {
		w = os.Stdout
	}
	format := opts.Format
	if format != FormatJSON {
		format = FormatText
	}

	fields := make(map[string]any, 1)
	if app := strings.TrimSpace(opts.App); app != "" {
		fields["app"] = app
	}
	return &fieldLogger{
		out:    &sink{w: w},
		min:    opts.Level,
		format: format,
		fields: fields,
		clock:  time.Now,
	}
}

func Nop() Logger {
	return &fieldLogger{out: &sink{w: io.Discard}, min: off, clock: time.Now}
}

func (l *fieldLogger) With(fields map[string]any) Logger {
	if len(fields) == 0 {
		return l
	}
	child := *l
	child.fields = maps.Clone(l.fields)
	if child.fields == nil {
		child.fields = make(map[string]any, len(fields))
	}
	mergeFields(child.fields, fields)
	return &child
}

func (l *fieldLogger) Debug(msg string, fields map[string]any) { l.emit(Debug, msg, fields) }
func (l *fieldLogger) Info(msg string, fields map[string]any)  { l.emit(Info, msg, fields) }
func (l *fieldLogger) Warn(msg string, fields map[string]any)  { l.emit(Warn, msg, fields) }
func (l *fieldLogger) Error(msg string, fields map[string]any) { l.emit(Error, msg, fields) }

func (l *fieldLogger) emit(lvl Level, msg string, fields map[string]any) {
	if lvl < l.min {
		return
	}

	entry := make(map[string]any, len(l.fields)+len(fields)+3)
	maps.Copy(entry, l.fields)
	mergeFields(entry, fields)
	entry["ts"] = l.clock().Format(time.RFC3339Nano)
	entry["level"] = lvl.String()
	entry["msg"] = msg

	if l.format == FormatJSON {
		if b, err := json.Marshal(entry); err == nil {
			l.out.writeLine(b)
			return
		}
	}
	l.out.writeLine(formatText(entry))
}

// mergeFields ignora claves vacías; los error se guardan como texto.
func mergeFields(dst, src map[string]any) {
	for k, v := range src {
		if strings.TrimSpace(k) == "" {
			continue
		}
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		dst[k] = v
	}
}

// orden: ts, level, msg y después el resto alfabético
var leadingKeys = []string{"ts", "level", "msg"}

func formatText(entry map[string]any) []byte {
	var buf bytes.Buffer
	put := func(k string) {
		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(k)
		buf.WriteByte('=')
		buf.WriteString(textValue(entry[k]))
	}

	for _, k := range leadingKeys {
		if _, ok := entry[k]; ok {
			put(k)
		}
	}
	for _, k := range slices.Sorted(maps.Keys(entry)) {
		if !slices.Contains(leadingKeys, k) {
			put(k)
		}
	}
	return buf.Bytes()
}

// textValue entrecomilla lo que rompería el split por espacios.
func textValue(v any) string {
	s := fmt.Sprint(v)
	if s == "" || strings.ContainsAny(s, " \t\r\n\"=") {
		return strconv.Quote(s)
	}
	return s
}
