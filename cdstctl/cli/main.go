// Copyright 2026 The gVisor Authors.
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

// Package cli is the main entrypoint for cdstctl.
package cli

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"runtime"

	"cdst.dev/cdst/cdstctl/cmd"
	"cdst.dev/cdst/cdstctl/cmd/util"
	"cdst.dev/cdst/cdstctl/config"
	"cdst.dev/cdst/pkg/log"
	"github.com/google/subcommands"
	"golang.org/x/sys/unix"
)

// Main is the main entrypoint.
func Main() {
	forEachCmd(subcommands.Register)

	// Register with the main command line.
	config.RegisterFlags(flag.CommandLine)

	// All subcommands must be registered before flag parsing.
	flag.Parse()

	// Create a new Config from the flags and the optional config file.
	conf, err := config.NewFromFlags(flag.CommandLine)
	if err != nil {
		util.Fatalf("%v", err)
	}

	var logFile io.Writer = os.Stderr
	if conf.LogFilename != "" {
		f, err := log.OpenFile(conf.LogFilename)
		if err != nil {
			util.Fatalf("error opening log file %q: %v", conf.LogFilename, err)
		}
		logFile = f
		util.ErrorLogger = io.MultiWriter(os.Stderr, f)
	}
	log.SetTarget(log.NewEmitter(logFile, conf.LogFormat))
	log.SetLevel(conf.LogLevel)

	log.Infof("cdstctl %s, %s, %d CPUs, PID %d", runtime.Version(), runtime.GOARCH, runtime.NumCPU(), os.Getpid())
	log.Debugf("Page size: 0x%x (%d bytes)", os.Getpagesize(), os.Getpagesize())
	log.Infof("Args: %v", os.Args)
	conf.Log()

	ctx, stop := signal.NotifyContext(context.Background(), unix.SIGINT, unix.SIGTERM)
	subcmdCode := subcommands.Execute(ctx, conf)
	stop()
	if subcmdCode != subcommands.ExitSuccess {
		log.Warningf("Failure to execute command, err: %v", subcmdCode)
	}
	os.Exit(int(subcmdCode))
}

// forEachCmd invokes the passed callback for each command supported by
// cdstctl.
func forEachCmd(cb func(cmd subcommands.Command, group string)) {
	cb(subcommands.HelpCommand(), "")
	cb(subcommands.FlagsCommand(), "")
	cb(subcommands.CommandsCommand(), "")

	const containerGroup = "containers"
	cb(new(cmd.Ring), containerGroup)
	cb(new(cmd.Tac), containerGroup)
	cb(new(cmd.Lines), containerGroup)

	const benchGroup = "benchmarks"
	cb(new(cmd.Bench), benchGroup)
}
