/*
 * Copyright 2025 SREDiag Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package stress

import (
	"github.com/Workiva/go-datastructures/bitarray"
)

// seenSet records which fetch-before values have been observed.
type seenSet struct {
	bits bitarray.BitArray
}

func newSeenSet(n uint64) *seenSet {
	return &seenSet{bits: bitarray.NewBitArray(n)}
}

func (s *seenSet) has(v uint64) bool {
	ok, err := s.bits.GetBit(v)
	return err == nil && ok
}

func (s *seenSet) add(v uint64) {
	_ = s.bits.SetBit(v)
}
