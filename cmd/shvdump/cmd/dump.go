/*
Copyright (c) shv-go authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/silicon-heaven/shv-go/cpon"
	"github.com/silicon-heaven/shv-go/rpc"
	"github.com/silicon-heaven/shv-go/rpcvalue"
	"github.com/silicon-heaven/shv-go/wire"
)

var (
	dumpServerFlag   string
	dumpUserFlag     string
	dumpPasswordFlag string
	dumpConfigFlag   string
)

func init() {
	RootCmd.AddCommand(dumpCmd)
	dumpCmd.Flags().StringVarP(&dumpServerFlag, "server", "s", "localhost:3755", "broker address, host:port")
	dumpCmd.Flags().StringVarP(&dumpUserFlag, "user", "u", "test", "login user name")
	dumpCmd.Flags().StringVarP(&dumpPasswordFlag, "password", "p", "test", "login password (plaintext, will be hashed)")
	dumpCmd.Flags().StringVarP(&dumpConfigFlag, "config", "c", "", "path to a YAML client config; overrides -s/-u/-p")
}

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Connect to a broker, log in, and print every RPC frame seen afterward",
	RunE: func(_ *cobra.Command, _ []string) error {
		ConfigureVerbosity()
		return runDump()
	},
}

func runDump() error {
	cfg := rpc.DefaultConfig()
	if dumpConfigFlag != "" {
		loaded, err := rpc.ReadConfig(dumpConfigFlag)
		if err != nil {
			return fmt.Errorf("reading config from %q: %w", dumpConfigFlag, err)
		}
		cfg = loaded
	} else {
		host, port, err := net.SplitHostPort(dumpServerFlag)
		if err != nil {
			return fmt.Errorf("parsing -server %q: %w", dumpServerFlag, err)
		}
		cfg.ServerHost = host
		if _, err := fmt.Sscanf(port, "%d", &cfg.ServerPort); err != nil {
			return fmt.Errorf("parsing port in -server %q: %w", dumpServerFlag, err)
		}
		cfg.User = dumpUserFlag
		cfg.Password = dumpPasswordFlag
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort)
	log.Infof("connecting to %s", addr)
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", addr, err)
	}
	defer conn.Close()

	driver := rpc.NewDriver(conn, cfg, nil)
	table := tablewriter.NewWriter(os.Stdout)
	table.SetColWidth(30)
	table.SetHeader([]string{"kind", "request id", "shv path", "method", "payload"})
	driver.FrameHandler = func(msg rpc.Message) {
		appendRow(table, msg)
		table.Render()
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DefaultRPCTimeout*2)
	defer cancel()
	if err := driver.Login(ctx); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	log.Infof("logged in as %s, state=%s", cfg.User, driver.State())

	if err := driver.Run(context.Background()); err != nil && !errors.Is(err, wire.ErrNeedMoreData) {
		return fmt.Errorf("connection closed: %w", err)
	}
	return nil
}

func appendRow(table *tablewriter.Table, msg rpc.Message) {
	kind := "?"
	switch {
	case msg.IsRequest():
		kind = "request"
	case msg.IsResponse():
		kind = "response"
	case msg.IsNotify():
		kind = "notify"
	}

	reqID := ""
	if id, ok := msg.RequestID(); ok {
		reqID = fmt.Sprintf("%d", id)
	}
	method, _ := msg.Method()

	payload := ""
	if p, ok := msg.Params(); ok {
		payload = renderValue(p)
	} else if r, ok := msg.Result(); ok {
		payload = renderValue(r)
	} else if e, ok := msg.RpcError(); ok {
		payload = e.Error()
	}

	table.Append([]string{kind, reqID, msg.ShvPath(), method, payload})
}

func renderValue(v rpcvalue.Value) string {
	text, err := cpon.Marshal(v, cpon.WriterOptions{})
	if err != nil {
		return fmt.Sprintf("<unprintable: %v>", err)
	}
	return text
}
