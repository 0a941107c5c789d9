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

package errors

import (
	goerrors "errors"
	"fmt"
	"testing"

	"golang.org/x/sys/unix"
)

func TestIs(t *testing.T) {
	wrapped := fmt.Errorf("push record: %w", ErrNoSpace)
	for _, tc := range []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{name: "same sentinel", err: ErrNoSpace, target: ErrNoSpace, want: true},
		{name: "wrapped sentinel", err: wrapped, target: ErrNoSpace, want: true},
		{name: "errno", err: wrapped, target: unix.ENOBUFS, want: true},
		{name: "other sentinel", err: ErrNoSpace, target: ErrNoData, want: false},
		{name: "other errno", err: ErrNoData, target: unix.ENOBUFS, want: false},
		{name: "same errno different value", err: New(unix.ENODATA, "x"), target: ErrNoData, want: false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if got := goerrors.Is(tc.err, tc.target); got != tc.want {
				t.Errorf("errors.Is(%v, %v) = %t, want %t", tc.err, tc.target, got, tc.want)
			}
		})
	}
}

func TestErrno(t *testing.T) {
	var e *Error
	if !goerrors.As(fmt.Errorf("pop: %w", ErrNoData), &e) {
		t.Fatalf("errors.As failed to find *Error")
	}
	if got, want := e.Errno(), unix.ENODATA; got != want {
		t.Errorf("Errno() = %v, want %v", got, want)
	}
	if got, want := e.Error(), "not enough data in buffer"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
