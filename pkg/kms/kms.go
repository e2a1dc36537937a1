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

// Package kms lists keys and reads key policies with the AWS SDK for Go v2.
package kms

import (
	"context"
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// DefaultPolicyName is the only policy name KMS currently supports
const DefaultPolicyName = "default"

const aliasPrefix = "alias/"

// API is the subset of the SDK KMS client used by this package
type API interface {
	ListKeys(ctx context.Context, params *kms.ListKeysInput, optFns ...func(*kms.Options)) (*kms.ListKeysOutput, error)
	ListAliases(ctx context.Context, params *kms.ListAliasesInput, optFns ...func(*kms.Options)) (*kms.ListAliasesOutput, error)
	DescribeKey(ctx context.Context, params *kms.DescribeKeyInput, optFns ...func(*kms.Options)) (*kms.DescribeKeyOutput, error)
	GetKeyPolicy(ctx context.Context, params *kms.GetKeyPolicyInput, optFns ...func(*kms.Options)) (*kms.GetKeyPolicyOutput, error)
}

var _ API = (*kms.Client)(nil)

// 🔑 Key is one KMS key with the aliases pointing at it
type Key struct {
	ID      string
	ARN     string
	Aliases []string
}

// Client wraps a KMS API
type Client struct {
	api API
}

// NewFromConfig creates a Client from a resolved aws.Config; endpointURL
// overrides the service endpoint when set
func NewFromConfig(cfg aws.Config, endpointURL string) *Client {
	return &Client{api: kms.NewFromConfig(cfg, func(o *kms.Options) {
		if endpointURL != "" {
			o.BaseEndpoint = aws.String(endpointURL)
		}
	})}
}

// NewWithAPI creates a Client around a custom API implementation
func NewWithAPI(api API) *Client {
	return &Client{api: api}
}

// 📋 ListKeys returns every key in the account and region, ordered by id
func (c *Client) ListKeys(ctx context.Context) ([]Key, error) {
	aliases, err := c.aliasesByKey(ctx)
	if err != nil {
		return nil, err
	}

	var keys []Key
	paginator := kms.NewListKeysPaginator(c.api, &kms.ListKeysInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, errors.Errorf("listing keys: %w", err)
		}
		for _, k := range page.Keys {
			id := aws.ToString(k.KeyId)
			keys = append(keys, Key{ID: id, ARN: aws.ToString(k.KeyArn), Aliases: aliases[id]})
		}
	}

	slices.SortFunc(keys, func(a, b Key) int { return strings.Compare(a.ID, b.ID) })
	zerolog.Ctx(ctx).Debug().Int("keys", len(keys)).Msg("kms keys listed")
	return keys, nil
}

func (c *Client) aliasesByKey(ctx context.Context) (map[string][]string, error) {
	out := map[string][]string{}
	paginator := kms.NewListAliasesPaginator(c.api, &kms.ListAliasesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, errors.Errorf("listing aliases: %w", err)
		}
		for _, a := range page.Aliases {
			target := aws.ToString(a.TargetKeyId)
			if target == "" {
				continue
			}
			out[target] = append(out[target], aws.ToString(a.AliasName))
		}
	}
	for _, names := range out {
		slices.Sort(names)
	}
	return out, nil
}

// 📜 GetPolicy returns the policy document of a key. key may be a key id, a
// key arn or an alias; aliases are resolved first since GetKeyPolicy does not
// accept them.
func (c *Client) GetPolicy(ctx context.Context, key, policyName string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", errors.New("key is required")
	}
	if policyName == "" {
		policyName = DefaultPolicyName
	}

	keyID, err := c.resolve(ctx, key)
	if err != nil {
		return "", err
	}

	out, err := c.api.GetKeyPolicy(ctx, &kms.GetKeyPolicyInput{
		KeyId:      aws.String(keyID),
		PolicyName: aws.String(policyName),
	})
	if err != nil {
		return "", errors.Errorf("getting policy %s of key %s: %w", policyName, key, err)
	}
	return aws.ToString(out.Policy), nil
}

func (c *Client) resolve(ctx context.Context, key string) (string, error) {
	if !strings.HasPrefix(key, aliasPrefix) {
		return key, nil
	}

	out, err := c.api.DescribeKey(ctx, &kms.DescribeKeyInput{KeyId: aws.String(key)})
	if err != nil {
		return "", errors.Errorf("resolving %s: %w", key, err)
	}
	if out.KeyMetadata == nil || aws.ToString(out.KeyMetadata.KeyId) == "" {
		return "", errors.Errorf("resolving %s: no key metadata returned", key)
	}
	return aws.ToString(out.KeyMetadata.KeyId), nil
}
