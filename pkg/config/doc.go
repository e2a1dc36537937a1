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
Package config loads yawns settings from files and merges them with flags
and environment variables.

🎯 Purpose:
- Parses HCL, YAML and JSON config files through a parser registry
- Validates configuration values
- Layers file values under environment variables and flags

🔄 Precedence (highest first):
 1. command line flag
 2. environment variable
 3. config file
 4. built in default

🔍 Example:

	aws {
	  region  = "eu-west-1"
	  profile = "backup"
	}

	s3 {
	  max_concurrent    = 25
	  progress_interval = "10s"
	  metadata = {
	    team = "data"
	  }
	}
*/
package config
