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

package listing

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// Source names accepted by NewLister
const (
	SourceAuto    = "auto"
	SourceCommand = "command"
	SourceWalk    = "walk"
	SourceFile    = "file"
)

// DefaultCommand lists every directory under the working directory and flags links without resolving them
var DefaultCommand = []string{"cmd", "/C", "dir /s"}

// 📂 Lister produces recursive listing text for a root directory
type Lister interface {
	List(ctx context.Context, root string) (io.ReadCloser, error)
}

// 🏭 NewLister picks a listing source by name
func NewLister(source, file string, command []string) (Lister, error) {
	switch source {
	case "", SourceAuto:
		if file != "" {
			return &FileLister{Path: file}, nil
		}
		if runtime.GOOS == "windows" {
			return &CommandLister{Args: DefaultCommand}, nil
		}
		return &WalkLister{}, nil
	case SourceCommand:
		if len(command) == 0 {
			command = DefaultCommand
		}
		return &CommandLister{Args: command}, nil
	case SourceWalk:
		return &WalkLister{}, nil
	case SourceFile:
		if file == "" {
			return nil, errors.Errorf("listing source %q requires a listing file", source)
		}
		return &FileLister{Path: file}, nil
	default:
		return nil, errors.Errorf("unknown listing source %q", source)
	}
}

// 🖥️ CommandLister runs an external enumeration command inside the root
type CommandLister struct {
	Args []string
}

func (l *CommandLister) List(ctx context.Context, root string) (io.ReadCloser, error) {
	if len(l.Args) == 0 {
		return nil, errors.Errorf("no listing command configured")
	}
	zerolog.Ctx(ctx).Debug().Strs("command", l.Args).Str("root", root).Msg("running listing command")

	cmd := exec.CommandContext(ctx, l.Args[0], l.Args[1:]...)
	cmd.Dir = root
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return nil, errors.Errorf("running %q: %w (stderr: %s)", l.Args, err, bytes.TrimSpace(stderr.Bytes()))
	}
	return io.NopCloser(bytes.NewReader(out)), nil
}

// 📄 FileLister reads a listing captured earlier
type FileLister struct {
	Path string
}

func (l *FileLister) List(ctx context.Context, root string) (io.ReadCloser, error) {
	f, err := os.Open(l.Path)
	if err != nil {
		return nil, errors.Errorf("opening listing file: %w", err)
	}
	return f, nil
}

// 🚶 WalkLister renders the same text format natively, without following links
type WalkLister struct{}

const listingTimeLayout = "01/02/2006  03:04 PM"

func (l *WalkLister) List(ctx context.Context, root string) (io.ReadCloser, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Errorf("resolving root: %w", err)
	}
	var buf bytes.Buffer
	if err := walkDir(ctx, &buf, abs); err != nil {
		return nil, err
	}
	return io.NopCloser(&buf), nil
}

// walkDir writes one header and the entries of dir, then recurses into real subdirectories
func walkDir(ctx context.Context, w io.Writer, dir string) error {
	if err := ctx.Err(); err != nil {
		return errors.Errorf("walking %s: %w", dir, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return errors.Errorf("reading directory %s: %w", dir, err)
	}

	fmt.Fprintf(w, " Directory of %s\n\n", dir)

	var subdirs []string
	for _, e := range entries {
		full := filepath.Join(dir, e.Name())
		info, err := e.Info()
		if err != nil {
			zerolog.Ctx(ctx).Debug().Err(err).Str("path", full).Msg("entry vanished during walk")
			continue
		}
		stamp := info.ModTime().Format(listingTimeLayout)

		switch {
		case e.Type()&fs.ModeSymlink != 0:
			target, err := os.Readlink(full)
			if err != nil {
				target = "?"
			}
			marker := LinkMarker
			if st, err := os.Stat(full); err == nil && st.IsDir() {
				marker = directoryLinkMarkers[0]
			}
			fmt.Fprintf(w, "%s    %-14s %s [%s]\n", stamp, marker, e.Name(), target)
		case e.IsDir():
			fmt.Fprintf(w, "%s    %-14s %s\n", stamp, "<DIR>", e.Name())
			subdirs = append(subdirs, full)
		default:
			fmt.Fprintf(w, "%s    %14d %s\n", stamp, info.Size(), e.Name())
		}
	}
	fmt.Fprintln(w)

	for _, sub := range subdirs {
		if err := walkDir(ctx, w, sub); err != nil {
			return err
		}
	}
	return nil
}

