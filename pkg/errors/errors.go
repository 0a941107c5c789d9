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

// Package errors holds the standardized error definitions for the buffer
// containers.
package errors

import (
	"golang.org/x/sys/unix"
)

// Error represents a failed container operation with an errno and a
// descriptive message.
type Error struct {
	errno   unix.Errno
	message string
}

// New creates a new *Error.
func New(err unix.Errno, message string) *Error {
	return &Error{
		errno:   err,
		message: message,
	}
}

// Error implements error.Error.
func (e *Error) Error() string { return e.message }

// Errno returns the underlying unix.Errno value.
func (e *Error) Errno() unix.Errno { return e.errno }

// Is reports whether target is e or the errno carried by e, so that
// errors.Is(err, unix.ENOBUFS) holds for ErrNoSpace.
func (e *Error) Is(target error) bool {
	switch t := target.(type) {
	case *Error:
		return e == t
	case unix.Errno:
		return e.errno == t
	}
	return false
}

var (
	// ErrNoSpace is returned when a push would exceed the capacity of the
	// underlying region. Nothing is written.
	ErrNoSpace = New(unix.ENOBUFS, "not enough space in buffer")

	// ErrNoData is returned when a pop or peek asks for more bytes than are
	// stored. Nothing is read.
	ErrNoData = New(unix.ENODATA, "not enough data in buffer")
)
