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
	"errors"
	"fmt"

	"github.com/nabbar/golib/crypt"
	"github.com/nabbar/golib/duration"
	"github.com/spf13/viper"

	"github.com/sabouaram/pgdriver/conn"
)

// runOptions is everything a run needs, assembled once from viper so that
// a --watch reload only has to redo this step, not re-parse flags.
type runOptions struct {
	cfg            conn.Config
	txName         string
	forceRollback  bool
	connectTimeout duration.Duration
}

var errMissingDSN = errors.New("pgclient: --dsn (or a config file setting it) is required")

// optionsFromViper reads the bound flags (and whatever --config merged in
// ahead of it) into a runOptions. args is only used to reject an empty
// statement list early, with a clearer message than cobra's own.
func optionsFromViper(vpr *viper.Viper, args []string) (runOptions, error) {
	if len(args) == 0 {
		return runOptions{}, errors.New("pgclient: at least one SQL statement is required")
	}

	dsn := vpr.GetString("dsn")
	if dsn == "" {
		return runOptions{}, errMissingDSN
	}

	password := vpr.GetString("password")
	if enc := vpr.GetString("password-enc"); enc != "" {
		decoded, err := decryptPassword(enc, vpr.GetString("crypt-key"), vpr.GetString("crypt-nonce"))
		if err != nil {
			return runOptions{}, fmt.Errorf("pgclient: --password-enc: %w", err)
		}
		password = decoded
	}

	overrides := map[string]string{
		"host":             vpr.GetString("host"),
		"port":             vpr.GetString("port"),
		"dbname":           vpr.GetString("dbname"),
		"user":             vpr.GetString("user"),
		"password":         password,
		"sslmode":          vpr.GetString("sslmode"),
		"application_name": vpr.GetString("application-name"),
	}

	var timeout duration.Duration
	if raw := vpr.GetString("connect-timeout"); raw != "" {
		parsed, err := duration.Parse(raw)
		if err != nil {
			return runOptions{}, fmt.Errorf("pgclient: --connect-timeout: %w", err)
		}
		timeout = parsed
	}

	return runOptions{
		cfg: conn.Config{
			DSN:        dsn,
			Overrides:  overrides,
			Autocommit: vpr.GetBool("autocommit"),
		},
		txName:         vpr.GetString("tx-name"),
		forceRollback:  vpr.GetBool("rollback"),
		connectTimeout: timeout,
	}, nil
}

// decryptPassword recovers a password override from an AES-GCM ciphertext,
// so a --config file can carry an encrypted secret instead of plaintext.
func decryptPassword(encHex, keyHex, nonceHex string) (string, error) {
	if keyHex == "" || nonceHex == "" {
		return "", errors.New("--crypt-key and --crypt-nonce are both required")
	}

	key, err := crypt.GetHexKey(keyHex)
	if err != nil {
		return "", fmt.Errorf("--crypt-key: %w", err)
	}

	nonce, err := crypt.GetHexNonce(nonceHex)
	if err != nil {
		return "", fmt.Errorf("--crypt-nonce: %w", err)
	}

	c, err := crypt.New(key, nonce)
	if err != nil {
		return "", err
	}

	plain, err := c.DecodeHex([]byte(encHex))
	if err != nil {
		return "", err
	}

	return string(plain), nil
}
