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

package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
)

// 🎛️ Options controls how the process logger is built
type Options struct {
	Debug bool      // Lower the level to debug
	JSON  bool      // Emit JSON lines instead of the console format
	Out   io.Writer // Defaults to stderr
}

// 🏭 New builds the structured logger carried through zerolog.Ctx
func New(opts Options) zerolog.Logger {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	level := zerolog.InfoLevel
	if opts.Debug {
		level = zerolog.DebugLevel
	}

	if opts.JSON {
		return zerolog.New(out).Level(level).With().Timestamp().Logger()
	}

	writer := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.Kitchen,
		NoColor:    !IsTerminal(out),
	}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

// 🖥️ IsTerminal reports whether v is a file attached to a terminal
func IsTerminal(v any) bool {
	f, ok := v.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// 🎨 SetStyling turns colors and pterm styling on or off for the process
func SetStyling(enabled bool) {
	color.NoColor = !enabled
	if enabled {
		pterm.EnableStyling()
	} else {
		pterm.DisableStyling()
	}
}

// 🎯 Console prints user-facing lines and mirrors them to the context logger.
// Writes are serialized so concurrent workers never interleave a line.
type Console struct {
	out io.Writer
	mu  sync.Mutex
}

// 🏭 NewConsole creates a console writing to out
func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

// 📝 Println writes one preformatted line
func (c *Console) Println(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, line)
}

// 📝 Header logs a header
func (c *Console) Header(ctx context.Context, msg string) {
	name := color.New(color.Bold, color.FgCyan).Sprint("flatten")
	c.Println(fmt.Sprintf("\n%s %s\n", name, color.New(color.Faint).Sprint("• "+msg)))
	zerolog.Ctx(ctx).Debug().Msg(msg)
}

// 📝 Success logs a success message
func (c *Console) Success(ctx context.Context, msg string) {
	c.Println(pterm.Success.Sprint(msg))
	zerolog.Ctx(ctx).Debug().Msg(msg)
}

// 📝 Warning logs a warning message
func (c *Console) Warning(ctx context.Context, msg string) {
	c.Println(pterm.Warning.Sprint(msg))
	zerolog.Ctx(ctx).Debug().Msg(msg)
}

// 📝 Error logs an error message
func (c *Console) Error(ctx context.Context, msg string) {
	c.Println(pterm.Error.Sprint(msg))
	zerolog.Ctx(ctx).Debug().Msg(msg)
}

// 📝 Info logs an info message
func (c *Console) Info(ctx context.Context, msg string) {
	c.Println(pterm.Info.Sprint(msg))
	zerolog.Ctx(ctx).Debug().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (c *Console) Infof(ctx context.Context, format string, args ...any) {
	c.Info(ctx, fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (c *Console) Warningf(ctx context.Context, format string, args ...any) {
	c.Warning(ctx, fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (c *Console) Errorf(ctx context.Context, format string, args ...any) {
	c.Error(ctx, fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (c *Console) Successf(ctx context.Context, format string, args ...any) {
	c.Success(ctx, fmt.Sprintf(format, args...))
}
