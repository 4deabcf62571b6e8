// Copyright 2025 walteh LLC
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

package flatten

import (
	"syscall"

	"gitlab.com/tozd/go/errors"
)

// 🌐 TransientFunc decides whether a copy error is worth retrying
type TransientFunc func(err error) bool

// ErrnoPredicate matches errors that wrap one of the given OS error numbers
func ErrnoPredicate(codes ...syscall.Errno) TransientFunc {
	set := make(map[syscall.Errno]struct{}, len(codes))
	for _, c := range codes {
		set[c] = struct{}{}
	}
	return func(err error) bool {
		var errno syscall.Errno
		if !errors.As(err, &errno) {
			return false
		}
		_, ok := set[errno]
		return ok
	}
}

// DefaultTransientCodes returns the platform's network-path error numbers
func DefaultTransientCodes() []syscall.Errno {
	out := make([]syscall.Errno, len(defaultTransientCodes))
	copy(out, defaultTransientCodes)
	return out
}

// DefaultTransient matches the platform's "network path/name not found" class of errors
func DefaultTransient() TransientFunc {
	return ErrnoPredicate(defaultTransientCodes...)
}

// TransientWithCodes extends the platform defaults with extra error numbers
func TransientWithCodes(extra ...int) TransientFunc {
	codes := DefaultTransientCodes()
	for _, c := range extra {
		codes = append(codes, syscall.Errno(c))
	}
	return ErrnoPredicate(codes...)
}
