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
Package status reports a flatten run to the operator.

🎯 Purpose:
- Prints discovery counts, per-item results and the final totals
- Writes the machine-readable run report

🔄 Flow:
1. The operation calls the Reporter at each state change
2. Each finished item becomes one formatted line
3. Done renders the totals table and lists failures and orphaned temp files
4. WriteReport persists the summary as yaml or json

⚡ Key Responsibilities:
- Orphaned temp files are always listed by path so they can be recovered by hand
- Output is line-atomic under concurrent workers
*/
package status
