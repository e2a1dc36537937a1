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
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/walteh/yawns/cmd/yawns/commands"
	"github.com/walteh/yawns/cmd/yawns/opts"
	"github.com/walteh/yawns/pkg/batch"
	"github.com/walteh/yawns/pkg/config"
	"github.com/walteh/yawns/pkg/log"
)

var rootBindings = []config.Binding{
	{Key: config.KeyRegion, Flag: "aws-region", Env: "AWS_REGION"},
	{Key: config.KeyProfile, Flag: "aws-profile", Env: "AWS_PROFILE"},
	{Key: config.KeyEndpointURL, Flag: "endpoint-url", Env: "AWS_ENDPOINT_URL"},
	{Key: config.KeyVerbose, Flag: "verbose", Env: "YAWNS_VERBOSE"},
	{Key: config.KeyConfigFile, Flag: "config", Env: "YAWNS_CONFIG"},
}

// newRootCmd builds the command tree around shared options
func newRootCmd(ro *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "yawns",
		Short:         "Yet another wrapper for S3 batch work",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd, ro)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	addRootFlags(cmd)

	cmd.AddCommand(
		commands.NewS3Cmd(ro),
		commands.NewKMSCmd(ro),
		newVersionCmd(ro),
	)

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return batch.MarkInvalidInput(err)
	})
	markArgErrors(cmd)

	return cmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("aws-region", "us-east-1", "AWS region")
	cmd.PersistentFlags().String("aws-profile", "default", "AWS shared config profile")
	cmd.PersistentFlags().String("endpoint-url", "", "custom S3 compatible endpoint, enables path style addressing")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "print every object and enable debug logging")
	cmd.PersistentFlags().StringP("config", "c", "", "config file path (default: .yawns.hcl, .yawns.yaml or .yawns.json when present)")
}

// markArgErrors classifies positional argument errors as input errors on
// every command of the tree
func markArgErrors(cmd *cobra.Command) {
	if validate := cmd.Args; validate != nil {
		cmd.Args = func(c *cobra.Command, args []string) error {
			return batch.MarkInvalidInput(validate(c, args))
		}
	}
	for _, sub := range cmd.Commands() {
		markArgErrors(sub)
	}
}

// setup binds the global settings, installs the loggers and applies the
// config file
func setup(cmd *cobra.Command, ro *opts.RootOpts) error {
	if err := ro.Bind(cmd, rootBindings...); err != nil {
		return err
	}

	level := zerolog.InfoLevel
	if ro.Verbose() {
		level = zerolog.DebugLevel
	}

	zlog := zerolog.New(zerolog.ConsoleWriter{Out: ro.Stderr}).Level(level).With().Timestamp().Logger()
	ctx := zlog.WithContext(cmd.Context())
	ctx = log.NewContext(ctx, log.New(ro.Stderr, level))

	if _, err := config.Apply(ctx, ro.Viper, ro.Viper.GetString(config.KeyConfigFile), "."); err != nil {
		return batch.MarkInvalidInput(err)
	}

	cmd.SetContext(ctx)
	return nil
}
