// Copyright (c) 2024 Tagsum Inc. All rights reserved.
// Use of this source code is governed by a license that can be
// found in the LICENSE file.

package minimd5

import (
	"runtime"

	"github.com/klauspost/cpuid/v2"
	"github.com/remeh/sizedwaitgroup"
)

// batchWorkers caps concurrent hashing goroutines in Sum32Batch at one per
// logical core.
var batchWorkers = func() int {
	if n := cpuid.CPU.LogicalCores; n > 0 {
		return n
	}
	return runtime.NumCPU()
}()

// Sum32Batch fingerprints every input and returns the results in input
// order. Inputs are hashed concurrently; the output is identical to
// calling Sum32String on each element.
func Sum32Batch(inputs []string) []uint32 {
	out := make([]uint32, len(inputs))
	if len(inputs) == 0 {
		return out
	}

	swg := sizedwaitgroup.New(batchWorkers)
	for i := range inputs {
		swg.Add()
		go func(i int) {
			defer swg.Done()
			out[i] = Sum32String(inputs[i])
		}(i)
	}
	swg.Wait()
	return out
}
