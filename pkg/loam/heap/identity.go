// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package heap

import "reflect"

// cellAddr returns a stable integer identity for a cell pointer, used for
// pointer-equality hashing. reflect.Value.Pointer keeps this package free of
// unsafe; no package in this module imports unsafe.
func cellAddr(p any) uintptr {
	return reflect.ValueOf(p).Pointer()
}
