// Copyright 2026 The gVisor Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"fmt"
	"io"
	"runtime"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Format selects how an emitter renders log lines.
type Format string

const (
	// FormatText renders key=value text lines.
	FormatText Format = "text"

	// FormatJSON renders one JSON object per line.
	FormatJSON Format = "json"
)

// ParseFormat parses a Format from its name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatText, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("invalid log format %q, must be %q or %q", s, FormatText, FormatJSON)
	}
}

// LogrusEmitter emits through a logrus logger. Level filtering is left to
// BasicLogger; the logrus logger accepts everything.
type LogrusEmitter struct {
	logger *logrus.Logger
}

// NewEmitter returns an emitter writing to w in the given format.
func NewEmitter(w io.Writer, format Format) *LogrusEmitter {
	l := logrus.New()
	l.SetOutput(&Writer{Next: w})
	l.SetLevel(logrus.DebugLevel)
	switch format {
	case FormatJSON:
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	default:
		l.SetFormatter(&logrus.TextFormatter{
			DisableColors:   true,
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339Nano,
		})
	}
	return &LogrusEmitter{logger: l}
}

// NewTextEmitter returns an emitter writing text lines to w.
func NewTextEmitter(w io.Writer) *LogrusEmitter {
	return NewEmitter(w, FormatText)
}

// NewJSONEmitter returns an emitter writing JSON lines to w.
func NewJSONEmitter(w io.Writer) *LogrusEmitter {
	return NewEmitter(w, FormatJSON)
}

// Emit implements Emitter.Emit.
func (e *LogrusEmitter) Emit(depth int, level Level, timestamp time.Time, format string, v ...any) {
	entry := e.logger.WithTime(timestamp)
	if _, file, line, ok := runtime.Caller(depth + 1); ok {
		if slash := strings.LastIndexByte(file, byte('/')); slash >= 0 {
			file = file[slash+1:] // Trim any directory path from the file.
		}
		entry = entry.WithField("caller", fmt.Sprintf("%s:%d", file, line))
	}
	entry.Logf(logrusLevel(level), format, v...)
}

func logrusLevel(level Level) logrus.Level {
	switch level {
	case Warning:
		return logrus.WarnLevel
	case Info:
		return logrus.InfoLevel
	default:
		return logrus.DebugLevel
	}
}
