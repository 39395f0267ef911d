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

// shvclient is a demo login client: it reads a YAML config (or flags),
// connects to an SHV broker, logs in, runs the connection's read/write/
// heartbeat loops, exports Prometheus counters and notifies systemd once
// the login handshake succeeds.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/daemon"
	log "github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/silicon-heaven/shv-go/rpc"
	"github.com/silicon-heaven/shv-go/rpc/stats"
)

func sdNotifyReady() {
	supported, err := daemon.SdNotify(false, daemon.SdNotifyReady)
	switch {
	case !supported && err != nil:
		log.Warningf("sd_notify failed: %v", err)
	case !supported:
		log.Debug("sd_notify not supported, NOTIFY_SOCKET unset")
	default:
		log.Info("sent sd_notify ready")
	}
}

func promptPassword() (string, error) {
	fmt.Fprint(os.Stderr, "password: ")
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password from terminal: %w", err)
	}
	return string(b), nil
}

func prepareConfig(cfgPath, host, user, password string, port int, askPassword bool) (*rpc.Config, error) {
	cfg := rpc.DefaultConfig()
	if cfgPath != "" {
		var err error
		cfg, err = rpc.ReadConfig(cfgPath)
		if err != nil {
			return nil, fmt.Errorf("reading config from %q: %w", cfgPath, err)
		}
	}
	if host != "" {
		cfg.ServerHost = host
	}
	if port != 0 {
		cfg.ServerPort = port
	}
	if user != "" {
		cfg.User = user
	}
	if password != "" {
		cfg.Password = password
	}
	if askPassword {
		pw, err := promptPassword()
		if err != nil {
			return nil, err
		}
		cfg.Password = pw
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func run(ctx context.Context, cfg *rpc.Config, st *stats.Stats, metricsPort int) error {
	addr := fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort)
	log.Infof("dialing broker at %s", addr)
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", addr, err)
	}
	defer conn.Close()

	driver := rpc.NewDriver(conn, cfg, st)
	driver.NotifyHandler = func(msg rpc.Message) {
		method, _ := msg.Method()
		log.Debugf("notify: path=%q method=%q", msg.ShvPath(), method)
	}

	loginCtx, cancel := context.WithTimeout(ctx, cfg.DefaultRPCTimeout*2)
	defer cancel()
	if err := driver.Login(loginCtx); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	log.Infof("logged in to %s as %s", addr, cfg.User)
	sdNotifyReady()

	if metricsPort != 0 {
		exporter := stats.NewPrometheusExporter(st, metricsPort, 10*time.Second)
		go func() {
			if err := exporter.Start(); err != nil {
				log.Errorf("stats exporter stopped: %v", err)
			}
		}()
	}

	return driver.Run(ctx)
}

func main() {
	var (
		verboseFlag     bool
		cfgFlag         string
		hostFlag        string
		portFlag        int
		userFlag        string
		passwordFlag    string
		askPasswordFlag bool
		metricsPortFlag int
	)

	flag.BoolVar(&verboseFlag, "verbose", false, "verbose output")
	flag.StringVar(&cfgFlag, "config", "", "path to the client YAML config")
	flag.StringVar(&hostFlag, "host", "", "broker host, overrides config")
	flag.IntVar(&portFlag, "port", 0, "broker port, overrides config")
	flag.StringVar(&userFlag, "user", "", "login user, overrides config")
	flag.StringVar(&passwordFlag, "password", "", "login password, overrides config")
	flag.BoolVar(&askPasswordFlag, "ask-password", false, "prompt for the password on the terminal instead of passing it on the command line")
	flag.IntVar(&metricsPortFlag, "monitoringport", 4270, "port to serve Prometheus metrics on, 0 disables it")
	flag.Parse()

	log.SetLevel(log.InfoLevel)
	if verboseFlag {
		log.SetLevel(log.DebugLevel)
	}

	cfg, err := prepareConfig(cfgFlag, hostFlag, userFlag, passwordFlag, portFlag, askPasswordFlag)
	if err != nil {
		log.Fatal(err)
	}
	log.Debugf("config: %+v", cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	st := &stats.Stats{}
	if err := run(ctx, cfg, st, metricsPortFlag); err != nil {
		log.Fatal(err)
	}
}
