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

package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/walteh/flatten/cmd/flatten/opts"
	"github.com/walteh/flatten/pkg/log"
	"github.com/walteh/flatten/pkg/operation"
	"gitlab.com/tozd/go/errors"
)

// 🚦 Exit codes
const (
	exitOK           = 0
	exitFailure      = 1
	exitBadDirectory = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	// the first interrupt cancels, a second one gets the default behavior back
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	context.AfterFunc(ctx, stop)

	o := &opts.RootOpts{Stdin: stdin, Stdout: stdout, Stderr: stderr}
	cmd := newRootCmd(o)
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	return exitCode(cmd.Context(), err, log.NewConsole(stderr))
}

func exitCode(ctx context.Context, err error, console *log.Console) int {
	if ctx == nil {
		ctx = context.Background()
	}
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, operation.ErrRootNotFound):
		console.Errorf(ctx, "Directory does not exist: %v", err)
		return exitBadDirectory
	default:
		zerolog.Ctx(ctx).Debug().Err(err).Msg("command failed")
		console.Errorf(ctx, "%v", err)
		return exitFailure
	}
}
