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

package storage

import (
	"context"
	"net"
	"net/http"
	"os"

	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"gitlab.com/tozd/go/errors"
)

// ErrorKind is the coarse category of a per-object failure
type ErrorKind string

const (
	KindNotFound     ErrorKind = "not_found"
	KindAccessDenied ErrorKind = "access_denied"
	KindThrottled    ErrorKind = "throttled"
	KindInvalid      ErrorKind = "invalid"
	KindNetwork      ErrorKind = "network"
	KindCanceled     ErrorKind = "canceled"
	KindUnknown      ErrorKind = "unknown"
)

func (k ErrorKind) String() string {
	return string(k)
}

var (
	// ErrNotFound is returned by primitives when the source object is missing
	ErrNotFound = errors.Base("object not found")
	// ErrAccessDenied is returned when credentials lack permission for the call
	ErrAccessDenied = errors.Base("access denied")
)

// 🔍 Classify maps an error returned by a Copier onto an ErrorKind.
//
// AWS API error codes are checked first, then the HTTP status of the raw
// response, then transport and context failures.
func Classify(err error) ErrorKind {
	if err == nil {
		return ""
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindCanceled
	}

	if errors.Is(err, ErrNotFound) || errors.Is(err, os.ErrNotExist) {
		return KindNotFound
	}
	if errors.Is(err, ErrAccessDenied) || errors.Is(err, os.ErrPermission) {
		return KindAccessDenied
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if kind, ok := kindFromCode(apiErr.ErrorCode()); ok {
			return kind
		}
	}

	var respErr *smithyhttp.ResponseError
	if errors.As(err, &respErr) {
		if kind, ok := kindFromStatus(respErr.HTTPStatusCode()); ok {
			return kind
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindNetwork
	}

	return KindUnknown
}

func kindFromCode(code string) (ErrorKind, bool) {
	switch code {
	case "NoSuchKey", "NoSuchBucket", "NotFound", "NoSuchVersion":
		return KindNotFound, true
	case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch", "ExpiredToken", "Forbidden", "AllAccessDisabled":
		return KindAccessDenied, true
	case "SlowDown", "Throttling", "ThrottlingException", "RequestLimitExceeded", "TooManyRequests", "ServiceUnavailable":
		return KindThrottled, true
	case "InvalidRequest", "InvalidArgument", "InvalidObjectState", "KeyTooLongError", "MetadataTooLarge", "EntityTooLarge":
		return KindInvalid, true
	case "RequestTimeout", "RequestTimeoutException":
		return KindNetwork, true
	}
	return "", false
}

func kindFromStatus(status int) (ErrorKind, bool) {
	switch status {
	case http.StatusNotFound:
		return KindNotFound, true
	case http.StatusForbidden, http.StatusUnauthorized:
		return KindAccessDenied, true
	case http.StatusTooManyRequests, http.StatusServiceUnavailable:
		return KindThrottled, true
	case http.StatusBadRequest:
		return KindInvalid, true
	}
	return "", false
}
