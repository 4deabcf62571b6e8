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

import "fmt"

// 📋 CopyError is a failure to copy the link's resolved content into the temp file
type CopyError struct {
	Path      string
	Transient bool
	Err       error
}

func (e *CopyError) Error() string {
	if e.Transient {
		return fmt.Sprintf("copying %s (transient): %v", e.Path, e.Err)
	}
	return fmt.Sprintf("copying %s: %v", e.Path, e.Err)
}

func (e *CopyError) Unwrap() error { return e.Err }

// 🚨 RenameError means the copy succeeded but the temp file could not be moved
// over the link. The data is still at TempPath.
type RenameError struct {
	Path     string
	TempPath string
	Err      error
}

func (e *RenameError) Error() string {
	return fmt.Sprintf("replacing %s with %s (copied data left in temp file): %v", e.Path, e.TempPath, e.Err)
}

func (e *RenameError) Unwrap() error { return e.Err }

// ⚠️ AttributeRestoreError is a non-fatal failure to put the read-only flag back
type AttributeRestoreError struct {
	Path string
	Err  error
}

func (e *AttributeRestoreError) Error() string {
	return fmt.Sprintf("restoring read-only attribute on %s: %v", e.Path, e.Err)
}

func (e *AttributeRestoreError) Unwrap() error { return e.Err }
