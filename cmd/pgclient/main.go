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

// Command pgclient is a small demonstration CLI driving the pgdriver core
// end to end: it assembles a conn.Config from a DSN plus keyword
// overrides, opens a SyncConnection over the pgwire protocol adapter,
// runs a single named transaction against one or more SQL statements, and
// reports the emitted SQL and the final transaction status.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	ctx context.Context
	cnl context.CancelFunc
)

func init() {
	ctx, cnl = context.WithCancel(context.Background())
}

func waitNotify() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT)
	signal.Notify(quit, syscall.SIGTERM)
	signal.Notify(quit, syscall.SIGQUIT)

	go func() {
		select {
		case <-quit:
			cnl()
		case <-ctx.Done():
		}
	}()
}

func main() {
	waitNotify()

	vpr := viper.New()
	cmd := newRootCommand(vpr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		cnl()
		os.Exit(1)
	}

	cnl()
}

func newRootCommand(vpr *viper.Viper) *cobra.Command {
	var (
		flgConfig string
		flgWatch  bool
	)

	root := &cobra.Command{
		Use:   "pgclient",
		Short: "Run a transaction against a PostgreSQL-compatible server",
		Long: "pgclient opens a connection through the pgdriver core, runs a named " +
			"transaction over the SQL statements given as arguments, and prints the " +
			"emitted SQL and the final transaction status.",
		Example: `  pgclient --dsn "host=localhost port=5432 dbname=app user=bob" "SELECT 1"
  pgclient --dsn "host=localhost dbname=app" --tx-name demo --rollback "INSERT INTO t VALUES (1)"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if flgConfig != "" {
				if err := loadConfigFile(vpr, flgConfig); err != nil {
					return err
				}
			}

			opts, err := optionsFromViper(vpr, args)
			if err != nil {
				return err
			}

			if flgConfig != "" && flgWatch {
				changed, stop, err := watchConfigFile(flgConfig)
				if err != nil {
					return err
				}
				defer stop()
				return runWatching(cmd.Context(), vpr, args, opts, changed)
			}

			return runOnce(cmd.Context(), opts, args)
		},
	}

	registerFlags(root, vpr, &flgConfig, &flgWatch)

	return root
}

func registerFlags(cmd *cobra.Command, vpr *viper.Viper, flgConfig *string, flgWatch *bool) {
	flags := cmd.Flags()

	flags.StringVar(flgConfig, "config", "", "path to a config file (json/yaml/toml) providing any of the flags below")
	flags.BoolVar(flgWatch, "watch", false, "re-run the transaction every time --config changes, until interrupted")

	flags.String("dsn", "", "base connection string, postgres://... or keyword=value form")
	flags.String("host", "", "overrides the DSN's host keyword")
	flags.String("port", "", "overrides the DSN's port keyword")
	flags.String("dbname", "", "overrides the DSN's dbname keyword")
	flags.String("user", "", "overrides the DSN's user keyword")
	flags.String("password", "", "overrides the DSN's password keyword")
	flags.String("password-enc", "", "hex-encoded AES-GCM ciphertext to decrypt into the password override; requires --crypt-key and --crypt-nonce")
	flags.String("crypt-key", "", "hex-encoded 32-byte key for --password-enc")
	flags.String("crypt-nonce", "", "hex-encoded 12-byte nonce for --password-enc")
	flags.String("sslmode", "", "overrides the DSN's sslmode keyword")
	flags.String("application-name", "", "overrides the DSN's application_name keyword")
	flags.Bool("autocommit", false, "seed the connection's autocommit flag")
	flags.String("tx-name", "", "savepoint name for the transaction; empty runs an unnamed scope")
	flags.Bool("rollback", false, "force a rollback on a clean exit instead of a commit")
	flags.String("connect-timeout", "", "abort the connect phase if it runs longer than this (e.g. 5s, 500ms); empty disables it")

	for _, name := range []string{
		"dsn", "host", "port", "dbname", "user", "password", "sslmode",
		"application-name", "autocommit", "tx-name", "rollback", "connect-timeout",
		"password-enc", "crypt-key", "crypt-nonce",
	} {
		_ = vpr.BindPFlag(name, flags.Lookup(name))
	}
}

func loadConfigFile(vpr *viper.Viper, path string) error {
	vpr.SetConfigFile(path)
	if err := vpr.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	return nil
}
