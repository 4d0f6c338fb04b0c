/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/nabbar/golib/duration"
	"github.com/nabbar/golib/logger"
	"github.com/spf13/viper"

	"github.com/sabouaram/pgdriver/conn"
	"github.com/sabouaram/pgdriver/pgwire"
	"github.com/sabouaram/pgdriver/protocol"
)

// runOnce opens a connection, runs one named transaction over statements,
// prints the outcome to stdout and closes the connection. When
// opts.connectTimeout is non-zero, the connect phase alone (not the
// transaction that follows) is bounded by it.
func runOnce(ctx context.Context, opts runOptions, statements []string) error {
	log := logger.New(ctx)
	logFn := func() logger.Logger { return log }

	handle := pgwire.New(pgwire.WithLogger(logFn))

	connectCtx := ctx
	if opts.connectTimeout > 0 {
		var cancel context.CancelFunc
		connectCtx, cancel = context.WithTimeout(ctx, opts.connectTimeout.Time())
		defer cancel()
	}

	started := time.Now()
	cn, err := conn.NewSyncConnection(connectCtx, opts.cfg, handle, logFn)
	elapsed := duration.ParseDuration(time.Since(started))
	if err != nil {
		return fmt.Errorf("connect (after %s): %w", elapsed, err)
	}
	fmt.Fprintf(os.Stdout, "connected in %s\n", elapsed)
	defer func() {
		if cerr := cn.Close(); cerr != nil {
			fmt.Fprintln(os.Stderr, "close:", cerr)
		}
	}()

	return runTransaction(ctx, cn, opts, statements, os.Stdout)
}

// runWatching runs the transaction once, then again every time changed
// fires, until ctx is cancelled (SIGINT/SIGTERM/SIGQUIT) or the watcher
// itself is stopped. Flags are re-read from vpr on every iteration, so a
// config file edit picked up by fsnotify takes effect on the next run.
func runWatching(ctx context.Context, vpr *viper.Viper, statements []string, first runOptions, changed <-chan struct{}) error {
	opts := first
	for {
		if err := runOnce(ctx, opts, statements); err != nil {
			fmt.Fprintln(os.Stderr, "run:", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-changed:
			if !ok {
				return nil
			}
			if err := vpr.ReadInConfig(); err != nil {
				fmt.Fprintln(os.Stderr, "reload:", err)
				continue
			}
			next, err := optionsFromViper(vpr, statements)
			if err != nil {
				fmt.Fprintln(os.Stderr, "reload:", err)
				continue
			}
			opts = next
		}
	}
}

// runTransaction opens opts's named scope, executes each statement in
// order, stopping at the first failure, and exits the scope accordingly:
// a clean pass commits unless opts.forceRollback is set, any execution
// error rolls back. It always reports the final status, even when a
// statement failed.
func runTransaction(ctx context.Context, cn conn.Connection, opts runOptions, statements []string, out io.Writer) error {
	scope, err := cn.Transaction(ctx, opts.txName, opts.forceRollback)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	var execErr error
	for _, sql := range statements {
		fmt.Fprintf(out, "-- %s\n", sql)

		if execErr = cn.ExecuteCommand(ctx, sql); execErr != nil {
			fmt.Fprintf(out, "   error: %v\n", execErr)
			break
		}

		if res := cn.LastResult(); res != nil {
			fmt.Fprintf(out, "   %s (%d row(s))\n", res.Command, len(res.Rows))
		}
	}

	// Scope.Exit already rolls back instead of committing when
	// opts.forceRollback was set at Transaction(), so a clean pass here
	// (execErr == nil) still rolls back if that flag is set.
	if err := scope.Exit(execErr); err != nil && execErr == nil {
		execErr = err
	}

	info := cn.StatusInfo()
	fmt.Fprintf(out, "status: %s, autocommit=%t, savepoint-depth=%d\n",
		txStatusLabel(info.TxStatus), info.Autocommit, info.SavepointDepth)

	return execErr
}

func txStatusLabel(s protocol.TxStatus) string {
	switch s {
	case protocol.TxIdle:
		return "idle"
	case protocol.TxInTrans:
		return "in-transaction"
	case protocol.TxInError:
		return "in-error"
	default:
		return "unknown"
	}
}
