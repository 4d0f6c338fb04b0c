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

package conn

import (
	"context"

	"github.com/sabouaram/pgdriver/protocol"
)

// StatusHealth round-trips a trivial command through the connection to
// confirm it is live. It only probes when IDLE: round-tripping a command
// mid-transaction would perturb the transaction the caller is running.
func (c *connection) StatusHealth(ctx context.Context) error {
	if c.closed.Load() {
		return ErrorClosed.Error(nil)
	}
	if c.txStatus() != protocol.TxIdle {
		return nil
	}
	return c.ExecuteCommand(ctx, "SELECT 1")
}

// StatusInfo reports a snapshot of the connection's current observable
// state, mirroring the teacher's StatusInfo/StatusHealth shape without
// depending on a host status-reporting package.
func (c *connection) StatusInfo() Info {
	enc, _ := c.ClientEncoding(context.Background())

	return Info{
		TxStatus:       c.txStatus(),
		Autocommit:     c.Autocommit(),
		ClientEncoding: enc,
		Closed:         c.closed.Load(),
		SavepointDepth: c.savepointDepth(),
	}
}
