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

/*
Package status renders batch progress and reports for the terminal.

🎯 Purpose:
- Periodic progress lines while a batch runs
- Final summary in text, JSON or YAML
- Tables for failures and listings

🔄 Flow:
 1. StartProgress polls a snapshot function on an interval
 2. the batch finishes and the ticker is stopped
 3. a Reporter renders the report in the selected format

Progress lines look like:

	⏳ copied 40/100 (2 failed) in 8s (5.00 objects/second), eta 12s
*/
package status
