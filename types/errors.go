// Copyright 2026 Blink Labs Software
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

package types

import "errors"

// ErrorKind classifies a failed operation
type ErrorKind uint8

const (
	KindUnknown ErrorKind = iota
	KindInvalidInput
	KindNotFound
	KindStateConflict
	KindAuthorization
	KindInsufficientResource
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidInput:
		return "InvalidInput"
	case KindNotFound:
		return "NotFound"
	case KindStateConflict:
		return "StateConflict"
	case KindAuthorization:
		return "AuthorizationFailure"
	case KindInsufficientResource:
		return "InsufficientResource"
	default:
		return "Unknown"
	}
}

// Kind sentinels. Every *Error matches the sentinel of its kind with errors.Is
var (
	ErrInvalidInput         = &Error{Kind: KindInvalidInput, Code: "InvalidInput", Message: "invalid input"}
	ErrNotFound             = &Error{Kind: KindNotFound, Code: "NotFound", Message: "not found"}
	ErrStateConflict        = &Error{Kind: KindStateConflict, Code: "StateConflict", Message: "state conflict"}
	ErrAuthorization        = &Error{Kind: KindAuthorization, Code: "AuthorizationFailure", Message: "authorization failure"}
	ErrInsufficientResource = &Error{Kind: KindInsufficientResource, Code: "InsufficientResource", Message: "insufficient resource"}
)

var kindSentinels = map[ErrorKind]*Error{
	KindInvalidInput:         ErrInvalidInput,
	KindNotFound:             ErrNotFound,
	KindStateConflict:        ErrStateConflict,
	KindAuthorization:        ErrAuthorization,
	KindInsufficientResource: ErrInsufficientResource,
}

// Error is a named pre-condition failure. Code is stable and safe to match on
// from outside the process.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
}

// NewError declares a new error sentinel
func NewError(kind ErrorKind, code string, message string) *Error {
	return &Error{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if e == t {
		return true
	}
	return kindSentinels[e.Kind] == t
}

// KindOf returns the kind of the first *Error in the chain
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// CodeOf returns the code of the first *Error in the chain, or an empty string
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

var ErrAmountOverflow = NewError(
	KindInvalidInput,
	"AmountOverflow",
	"amount overflows uint64",
)

// AddAmount adds two amounts, failing instead of wrapping around
func AddAmount(a, b uint64) (uint64, error) {
	sum := a + b
	if sum < a {
		return 0, ErrAmountOverflow
	}
	return sum, nil
}
