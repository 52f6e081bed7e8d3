// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package status carries the internal result codes produced by the parser,
// validator, optimizer, scheduler, and executors (spec section 4.6/7). It
// is the currency that flows through the scheduler's Futures; the classify
// package maps it onto the small client-facing error enumeration.
package status

import "fmt"

// Code is a closed enumeration of internal result codes. The zero value,
// OK, means success.
type Code int

// The full set of internal codes referenced by spec section 4.6's mapping
// table. Only OK, SyntaxError, StatementEmpty, SemanticError,
// PermissionError, and LeaderChanged get distinct treatment; everything
// else collapses to E_EXECUTION_ERROR at the client boundary.
const (
	OK Code = iota
	SyntaxError
	StatementEmpty
	SemanticError
	PermissionError
	LeaderChanged
	Balanced
	EdgeNotFound
	Error
	HostNotFound
	IndexNotFound
	Inserted
	KeyNotFound
	PartialSuccess
	NoSuchFile
	NotSupported
	PartNotFound
	SpaceNotFound
	GroupNotFound
	ZoneNotFound
	TagNotFound
	UserNotFound
	ListenerNotFound
	SessionNotFound
)

var codeNames = map[Code]string{
	OK:                "OK",
	SyntaxError:       "SyntaxError",
	StatementEmpty:    "StatementEmpty",
	SemanticError:     "SemanticError",
	PermissionError:   "PermissionError",
	LeaderChanged:     "LeaderChanged",
	Balanced:          "Balanced",
	EdgeNotFound:      "EdgeNotFound",
	Error:             "Error",
	HostNotFound:      "HostNotFound",
	IndexNotFound:     "IndexNotFound",
	Inserted:          "Inserted",
	KeyNotFound:       "KeyNotFound",
	PartialSuccess:    "PartialSuccess",
	NoSuchFile:        "NoSuchFile",
	NotSupported:      "NotSupported",
	PartNotFound:      "PartNotFound",
	SpaceNotFound:     "SpaceNotFound",
	GroupNotFound:     "GroupNotFound",
	ZoneNotFound:      "ZoneNotFound",
	TagNotFound:       "TagNotFound",
	UserNotFound:      "UserNotFound",
	ListenerNotFound:  "ListenerNotFound",
	SessionNotFound:   "SessionNotFound",
}

// String implements fmt.Stringer.
func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Code(%d)", int(c))
}

// Status pairs a Code with a human-readable message. It implements the
// error interface so it can be returned/wrapped like any other Go error,
// but callers that need to branch on the code should use Code() rather
// than string-matching Error().
type Status struct {
	code    Code
	message string
}

// OKStatus is the canonical success value.
var OKStatus = Status{code: OK}

// New creates a Status with the given code and a formatted message. Passing
// OK is allowed but unusual; prefer OKStatus for success.
func New(code Code, format string, args ...interface{}) Status {
	return Status{code: code, message: fmt.Sprintf(format, args...)}
}

// Wrap turns a plain Go error into an execution-internal Status (code
// Error), the same code the scheduler gives a panic recovered from an
// executor (spec section 7: "Uncaught exceptions from an executor are
// treated as execution errors carrying the exception message").
func Wrap(err error) Status {
	if err == nil {
		return OKStatus
	}
	if s, ok := err.(Status); ok {
		return s
	}
	return New(Error, "%s", err.Error())
}

// Code returns the status's code.
func (s Status) Code() Code {
	return s.code
}

// Message returns the human-readable message, empty for OK.
func (s Status) Message() string {
	return s.message
}

// Ok reports whether the status represents success.
func (s Status) Ok() bool {
	return s.code == OK
}

// Error implements the error interface.
func (s Status) Error() string {
	if s.message == "" {
		return s.code.String()
	}
	return fmt.Sprintf("%s: %s", s.code, s.message)
}

// String implements fmt.Stringer, identical to Error.
func (s Status) String() string {
	return s.Error()
}
