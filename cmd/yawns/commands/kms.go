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

package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/yawns/cmd/yawns/opts"
	"github.com/walteh/yawns/pkg/batch"
	"github.com/walteh/yawns/pkg/kms"
	"github.com/walteh/yawns/pkg/status"
)

// NewKMSCmd groups the KMS commands
func NewKMSCmd(ro *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kms",
		Short: "Inspect KMS keys",
	}

	cmd.AddCommand(newListKeysCmd(ro), newGetPolicyCmd(ro))

	return cmd
}

func newListKeysCmd(ro *opts.RootOpts) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "list-keys",
		Short: "List KMS keys and their aliases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := status.ParseFormat(output)
			if err != nil {
				return batch.MarkInvalidInput(err)
			}

			ctx := cmd.Context()
			client, err := ro.KMS(ctx)
			if err != nil {
				return errors.Errorf("creating kms client: %w", err)
			}

			keys, err := client.ListKeys(ctx)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(keys))
			for _, k := range keys {
				rows = append(rows, []string{k.ID, strings.Join(k.Aliases, ","), k.ARN})
			}
			return status.NewReporter(ro.Stdout, format, nil).Table([]string{"KeyId", "Aliases", "Arn"}, rows)
		},
	}

	cmd.Flags().StringVar(&output, "output", string(status.FormatText), "output format: text, json or yaml")

	return cmd
}

func newGetPolicyCmd(ro *opts.RootOpts) *cobra.Command {
	var policyName string

	cmd := &cobra.Command{
		Use:   "get-policy KEY",
		Short: "Print the policy document of a key (id, arn or alias/name)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := ro.KMS(ctx)
			if err != nil {
				return errors.Errorf("creating kms client: %w", err)
			}

			policy, err := client.GetPolicy(ctx, args[0], policyName)
			if err != nil {
				return err
			}

			fmt.Fprintln(ro.Stdout, policy)
			return nil
		},
	}

	cmd.Flags().StringVar(&policyName, "policy-name", kms.DefaultPolicyName, "name of the key policy")

	return cmd
}
