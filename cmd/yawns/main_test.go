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
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	sdkkms "github.com/aws/aws-sdk-go-v2/service/kms"
	kmstypes "github.com/aws/aws-sdk-go-v2/service/kms/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/yawns/cmd/yawns/opts"
	"github.com/walteh/yawns/pkg/batch"
	"github.com/walteh/yawns/pkg/kms"
	"github.com/walteh/yawns/pkg/storage/s3"
	"github.com/walteh/yawns/pkg/testutils"
)

// syncBuffer is written from worker goroutines and the progress ticker
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type harness struct {
	*testutils.S3Server
	ro     *opts.RootOpts
	stdout *syncBuffer
	stderr *syncBuffer
}

// newHarness returns RootOpts whose S3 clients talk to a fresh in memory
// server
func newHarness(t *testing.T, stdin string) *harness {
	t.Helper()

	h := &harness{S3Server: testutils.StartS3(t), stdout: &syncBuffer{}, stderr: &syncBuffer{}}
	h.ro = opts.New(strings.NewReader(stdin), h.stdout, h.stderr)
	h.ro.NewS3 = func(ctx context.Context, o s3.Options) (*s3.Client, error) {
		o.Credentials = testutils.Credentials
		o.EndpointURL = h.Endpoint
		return s3.New(ctx, o)
	}
	return h
}

func (h *harness) run(args ...string) int {
	return run(context.Background(), args, h.ro)
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "success", err: nil, want: 0},
		{name: "input_error", err: batch.MarkInvalidInput(errors.New("bad flag")), want: 2},
		{name: "wrapped_input_error", err: errors.Errorf("parsing: %w", batch.MarkInvalidInput(errors.New("line 3"))), want: 2},
		{name: "batch_fault", err: errors.Errorf("preflight: %w", batch.ErrBatchFault), want: 1},
		{name: "other", err: errors.New("boom"), want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestRunInputErrors(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
	}{
		{name: "unknown_flag", args: []string{"s3", "copy-list", "--nope"}},
		{name: "unknown_command", args: []string{"bogus"}},
		{name: "too_many_args", args: []string{"s3", "copy-list", "a", "b"}},
		{name: "missing_destination", args: []string{"s3", "copy-list", "--source-bucket", "src"}},
		{name: "missing_source", stdin: "obj\n", args: []string{"s3", "copy-list", "--destination-bucket", "dst"}},
		{name: "zero_concurrency", args: []string{"s3", "copy-list", "--source-bucket", "src", "--destination-bucket", "dst", "--max-concurrent", "0"}},
		{name: "bad_output", args: []string{"s3", "copy-list", "--source-bucket", "src", "--destination-bucket", "dst", "--output", "xml"}},
		{name: "bad_metadata", stdin: "obj\n", args: []string{"s3", "copy-list", "--source-bucket", "src", "--destination-bucket", "dst", "-m", "novalue"}},
		{name: "malformed_list", stdin: "a\tb\tc\td\n", args: []string{"s3", "copy-list", "--source-bucket", "src", "--destination-bucket", "dst"}},
		{name: "missing_list_file", args: []string{"s3", "copy-list", "--source-bucket", "src", "--destination-bucket", "dst", "/does/not/exist.txt"}},
		{name: "missing_config_file", args: []string{"--config", "/does/not/exist.yaml", "version"}},
		{name: "count_without_bucket", args: []string{"s3", "count-files"}},
		{name: "bad_glob", args: []string{"s3", "count-files", "--bucket", "b", "--match", "[a-"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.stdin)
			assert.Equal(t, 2, h.run(tt.args...), "stderr: %s", h.stderr.String())
			assert.Contains(t, h.stderr.String(), "❌ Error:")
		})
	}
}

func TestRunCopyList(t *testing.T) {
	h := newHarness(t, "obj1.txt\nobj2.txt\trenamed2.txt\n# comment line\nobj3.txt\nmissing.txt\n")
	h.Seed(t, "src-bucket", map[string]string{
		"in/obj1.txt": "one",
		"in/obj2.txt": "two",
		"in/obj3.txt": "three",
	})
	h.Seed(t, "dst-bucket", nil)

	code := h.run("s3", "copy-list",
		"--source-bucket", "src-bucket",
		"--destination-bucket", "dst-bucket",
		"--source-prefix", "in/",
		"--destination-prefix", "out/",
		"--max-concurrent", "2",
		"--progress-interval", "0",
		"--output", "json",
		"-")
	require.Equal(t, 0, code, "stderr: %s", h.stderr.String())

	var report map[string]any
	require.NoError(t, json.Unmarshal([]byte(h.stdout.String()), &report), h.stdout.String())
	assert.Equal(t, float64(4), report["total"])
	assert.Equal(t, float64(3), report["succeeded"])
	assert.Equal(t, float64(1), report["failed"])
	assert.Equal(t, false, report["cancelled"])

	failures := report["failures"].([]any)
	require.Len(t, failures, 1)
	assert.Equal(t, float64(5), failures[0].(map[string]any)["line"])
	assert.Equal(t, "not_found", failures[0].(map[string]any)["kind"])

	for _, key := range []string{"out/obj1.txt", "out/renamed2.txt", "out/obj3.txt"} {
		assert.True(t, h.Exists(t, "dst-bucket", key), "expected %s", key)
	}
	assert.Contains(t, h.stderr.String(), "4 objects")
}

func TestRunCopyListFromEnvAndConfig(t *testing.T) {
	h := newHarness(t, "")
	h.Seed(t, "src-bucket", map[string]string{"a.txt": "a"})
	h.Seed(t, "dst-bucket", nil)

	dir := t.TempDir()
	list := filepath.Join(dir, "list.txt")
	require.NoError(t, os.WriteFile(list, []byte("a.txt\tcopied/a.txt\n"), 0o600))

	cfg := filepath.Join(dir, "yawns.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("s3:\n  destination_bucket: dst-bucket\n  progress_interval: 0s\n"), 0o600))

	t.Setenv("AWS_S3_SRC_BUCKET", "src-bucket")
	t.Setenv("AWS_S3_SRC_OBJECT_LIST", list)

	code := h.run("--config", cfg, "s3", "copy-list")
	require.Equal(t, 0, code, "stderr: %s", h.stderr.String())

	assert.Contains(t, h.stdout.String(), "copied 1/1 objects")
	assert.True(t, h.Exists(t, "dst-bucket", "copied/a.txt"))
}

func TestRunCopyListPreflightFault(t *testing.T) {
	h := newHarness(t, "obj1.txt\n")
	h.Seed(t, "dst-bucket", nil)

	code := h.run("s3", "copy-list", "--source-bucket", "absent", "--destination-bucket", "dst-bucket", "--progress-interval", "0")
	assert.Equal(t, 1, code)
	assert.Empty(t, h.stdout.String(), "no report for a batch fault")
}

func TestRunCopy(t *testing.T) {
	h := newHarness(t, "")
	h.Seed(t, "src-bucket", map[string]string{"a.txt": "a"})
	h.Seed(t, "dst-bucket", nil)

	code := h.run("s3", "copy", "a.txt", "b.txt", "--source-bucket", "src-bucket", "--destination-bucket", "dst-bucket")
	require.Equal(t, 0, code, "stderr: %s", h.stderr.String())

	assert.NotEmpty(t, strings.TrimSpace(h.stdout.String()), "etag printed")
	assert.True(t, h.Exists(t, "dst-bucket", "b.txt"))
}

func TestRunUploadList(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(good, []byte("hello"), 0o600))
	missing := filepath.Join(dir, "gone.txt")

	t.Run("all_uploaded", func(t *testing.T) {
		h := newHarness(t, good+"\n")
		h.Seed(t, "dst-bucket", nil)

		code := h.run("s3", "upload-list", "--destination-bucket", "dst-bucket", "--destination-prefix", "up/", "--progress-interval", "0")
		require.Equal(t, 0, code, "stderr: %s", h.stderr.String())
		assert.Contains(t, h.stdout.String(), "uploaded 1/1 objects")
		assert.True(t, h.Exists(t, "dst-bucket", "up/notes.txt"))
	})

	t.Run("failure_exits_non_zero", func(t *testing.T) {
		h := newHarness(t, good+"\n"+missing+"\n")
		h.Seed(t, "dst-bucket", nil)

		code := h.run("s3", "upload-list", "--destination-bucket", "dst-bucket", "--progress-interval", "0")
		assert.Equal(t, 1, code)
		assert.Contains(t, h.stderr.String(), "uploads failed")
		assert.True(t, h.Exists(t, "dst-bucket", "notes.txt"), "other uploads still happen")
	})
}

func TestRunListBucketsAndCount(t *testing.T) {
	h := newHarness(t, "")
	h.Seed(t, "alpha", map[string]string{
		"logs/2024/a.log": "a",
		"logs/2025/b.log": "b",
		"logs/2025/c.txt": "c",
		"other/d.log":     "d",
	})
	h.Seed(t, "beta", nil)

	require.Equal(t, 0, h.run("s3", "list-buckets", "--output", "json"), "stderr: %s", h.stderr.String())

	var buckets []map[string]string
	require.NoError(t, json.Unmarshal([]byte(h.stdout.String()), &buckets))
	names := make([]string, 0, len(buckets))
	for _, b := range buckets {
		names = append(names, b["name"])
	}
	assert.ElementsMatch(t, []string{"alpha", "beta"}, names)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "whole_bucket", args: []string{"--bucket", "alpha"}, want: "4"},
		{name: "prefix", args: []string{"--bucket", "alpha", "--prefix", "logs/"}, want: "3"},
		{name: "glob", args: []string{"--bucket", "alpha", "--match", "**/*.log"}, want: "3"},
		{name: "prefix_and_glob", args: []string{"--bucket", "alpha", "--prefix", "logs/2025/", "--match", "**/*.log"}, want: "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h.stdout = &syncBuffer{}
			h.ro.Stdout = h.stdout
			require.Equal(t, 0, h.run(append([]string{"s3", "count-files"}, tt.args...)...), "stderr: %s", h.stderr.String())
			assert.Equal(t, tt.want, strings.TrimSpace(h.stdout.String()))
		})
	}
}

// fakeKMS answers with one key behind one alias
type fakeKMS struct{}

func (fakeKMS) ListKeys(context.Context, *sdkkms.ListKeysInput, ...func(*sdkkms.Options)) (*sdkkms.ListKeysOutput, error) {
	return &sdkkms.ListKeysOutput{Keys: []kmstypes.KeyListEntry{{KeyId: aws.String("k1"), KeyArn: aws.String("arn:aws:kms:us-east-1:1:key/k1")}}}, nil
}

func (fakeKMS) ListAliases(context.Context, *sdkkms.ListAliasesInput, ...func(*sdkkms.Options)) (*sdkkms.ListAliasesOutput, error) {
	return &sdkkms.ListAliasesOutput{Aliases: []kmstypes.AliasListEntry{{AliasName: aws.String("alias/backup"), TargetKeyId: aws.String("k1")}}}, nil
}

func (fakeKMS) DescribeKey(_ context.Context, in *sdkkms.DescribeKeyInput, _ ...func(*sdkkms.Options)) (*sdkkms.DescribeKeyOutput, error) {
	if aws.ToString(in.KeyId) != "alias/backup" {
		return nil, errors.New("not found")
	}
	return &sdkkms.DescribeKeyOutput{KeyMetadata: &kmstypes.KeyMetadata{KeyId: aws.String("k1")}}, nil
}

func (fakeKMS) GetKeyPolicy(_ context.Context, in *sdkkms.GetKeyPolicyInput, _ ...func(*sdkkms.Options)) (*sdkkms.GetKeyPolicyOutput, error) {
	return &sdkkms.GetKeyPolicyOutput{Policy: aws.String(`{"key":"` + aws.ToString(in.KeyId) + `","name":"` + aws.ToString(in.PolicyName) + `"}`)}, nil
}

func TestRunKMS(t *testing.T) {
	h := newHarness(t, "")
	h.ro.NewKMS = func(context.Context, s3.Options) (*kms.Client, error) {
		return kms.NewWithAPI(fakeKMS{}), nil
	}

	require.Equal(t, 0, h.run("kms", "list-keys"), "stderr: %s", h.stderr.String())
	assert.Contains(t, h.stdout.String(), "alias/backup")

	h.stdout = &syncBuffer{}
	h.ro.Stdout = h.stdout
	require.Equal(t, 0, h.run("kms", "get-policy", "alias/backup"), "stderr: %s", h.stderr.String())
	assert.JSONEq(t, `{"key":"k1","name":"default"}`, h.stdout.String())
}

func TestRunVersion(t *testing.T) {
	h := newHarness(t, "")

	require.Equal(t, 0, h.run("version"))
	assert.Contains(t, h.stdout.String(), "🚀 yawns version info:")

	h.stdout = &syncBuffer{}
	h.ro.Stdout = h.stdout
	require.Equal(t, 0, h.run("version", "--json"))

	var info VersionInfo
	require.NoError(t, json.Unmarshal([]byte(h.stdout.String()), &info))
	assert.NotEmpty(t, info.GoVersion)
	assert.NotEmpty(t, info.Version)
}
