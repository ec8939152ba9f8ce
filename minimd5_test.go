// Copyright (c) 2024 Tagsum Inc. All rights reserved.
// Use of this source code is governed by a license that can be
// found in the LICENSE file.

package minimd5

import (
	"bytes"
	"crypto/md5"
	"encoding/binary"
	"fmt"
	"math/rand"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/spaolacci/murmur3"
)

type miniTest struct {
	in   string
	want uint32
}

// Wants are the leading 8 hex digits of the canonical MD5 digests.
var golden = []miniTest{
	{"aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", 0x014842d4},
	{"bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", 0x0b649bcb},
	{"cccccccccccccccccccccccccccccccccccccccccccccccccccccccccccccccc", 0xbcd5708e},
	{"dddddddddddddddddddddddddddddddddddddddddddddddddddddddddddddddd", 0xe987c862},
	{"eeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee", 0x98273167},
	{"ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff", 0xbaf13e8b},
	{"gggggggggggggggggggggggggggggggggggggggggggggggggggggggggggggggg", 0x8ea3109c},
	{"hhhhhhhhhhhhhhhhhhhhhhhhhhhhhhhhhhhhhhhhhhhhhhhhhhhhhhhhhhhhhhhh", 0xd141045b},
	{"", 0xd41d8cd9},
	{"a", 0x0cc175b9},
	{"ab", 0x187ef443},
	{"abc", 0x90015098},
	{"abcd", 0xe2fc714c},
	{"abcde", 0xab56b4d9},
	{"abcdef", 0xe80b5017},
	{"abcdefg", 0x7ac66c0f},
	{"abcdefgh", 0xe8dc4081},
	{"abcdefghi", 0x8aa99b1f},
	{"abcdefghij", 0xa9255769},
	{"Discard medicine more than two years old.", 0xd747fc17},
	{"He who has a shady past knows that nice guys finish last.", 0xbff2dcb3},
	{"I wouldn't marry him with a ten foot pole.", 0x0441015e},
	{"Free! Free!/A trip/to Mars/for 900/empty jars/Burma Shave", 0x9e3cac8e},
	{"The days of the digital watch are numbered.  -Tom Stoppard", 0xa0f04459},
	{"Nepal premier won't resign.", 0xe7a48e0f},
	{"For every action there is an equal and opposite government program.", 0x637d2fe9},
	{"His money is twice tainted: 'taint yours and 'taint mine.", 0x834a8d18},
	{"There is no reason for any individual to have a computer in their home. -Ken Olsen, 1977", 0xde3a4d2f},
	{"It's a tiny change to the code and not completely disgusting. - Bob Manchek", 0xacf203f9},
	{"size:  a.out:  bad magic", 0xe1c1384c},
	{"The major problem is with sendmail.  -Mark Horton", 0xc90f3dde},
	{"Give me a rock, paper and scissors and I will move the world.  CCFestoon", 0xcdf7ab6c},
	{"If the enemy is within range, then so are you.", 0x83bc8523},
	{"It's well we cannot hear the screams/That we create in others' dreams.", 0x277cbe25},
	{"You remind me of a TV show, but that's all right: I watch it anyway.", 0xfd3fb0a7},
	{"C is as portable as Stonehedge!!", 0x469b13a7},
	{"Even if I could be Shakespeare, I think I should still choose to be Faraday. - A. Huxley", 0x63eb3a2f},
	{"The fugacity of a constituent in a mixture of gases at a given temperature is proportional to its mole fraction.  Lewis-Randall Rule", 0x72c2ed75},
	{"How can you write a big system without C++?  -Paul Glick", 0x132f7619},
}

// refSum32 computes the expected fingerprint straight from crypto/md5.
func refSum32(p []byte) uint32 {
	sum := md5.Sum(p)
	return binary.BigEndian.Uint32(sum[:4])
}

func TestGolden(t *testing.T) {
	for _, g := range golden {
		if got := Sum32String(g.in); got != g.want {
			t.Errorf("Sum32String(%q) = %08x, want %08x", g.in, got, g.want)
		}
		if got := Sum32([]byte(g.in)); got != g.want {
			t.Errorf("Sum32(%q) = %08x, want %08x", g.in, got, g.want)
		}
		if ref := refSum32([]byte(g.in)); ref != g.want {
			t.Errorf("reference disagrees for %q: %08x, table says %08x", g.in, ref, g.want)
		}
	}
}

func TestUTF8Inputs(t *testing.T) {
	inputs := []string{
		"héllo wörld",
		"naïve café",
		"序列化された状態",
		"玩家プロファイル",
		"нет данных",
		"🎮💾🔑",
		"mixed ascii / ひらがな / 🀄",
	}
	for _, in := range inputs {
		want := refSum32([]byte(in))
		if got := Sum32String(in); got != want {
			t.Errorf("Sum32String(%q) = %08x, want %08x", in, got, want)
		}
	}
}

// TestPaddingBoundaries covers inputs just below, at and above the point
// where the length trailer no longer fits the final block and padding
// spills into an extra one.
func TestPaddingBoundaries(t *testing.T) {
	for _, n := range []int{54, 55, 56, 57, 63, 64, 65, 118, 119, 120, 121, 127, 128, 129} {
		in := strings.Repeat("x", n)
		want := refSum32([]byte(in))
		if got := Sum32String(in); got != want {
			t.Errorf("length %d: got %08x, want %08x", n, got, want)
		}
	}
}

// TestScratchThreshold walks input sizes across the stack/heap scratch
// boundary. 247-byte inputs pad to exactly 256 bytes, 248-byte inputs roll
// over to 320 and a heap buffer.
func TestScratchThreshold(t *testing.T) {
	for n := 240; n <= 264; n++ {
		in := bytes.Repeat([]byte{0x7a}, n)
		want := refSum32(in)
		if got := Sum32(in); got != want {
			t.Errorf("length %d: got %08x, want %08x", n, got, want)
		}
		if got := Sum32String(string(in)); got != want {
			t.Errorf("length %d (string): got %08x, want %08x", n, got, want)
		}
	}
}

func TestDistinctInputs(t *testing.T) {
	pairs := [][2]string{
		{"abc", "abd"},
		{"", " "},
		{"player:1001", "player:1002"},
	}
	for _, p := range pairs {
		if Sum32String(p[0]) == Sum32String(p[1]) {
			t.Errorf("%q and %q collide", p[0], p[1])
		}
	}
}

func TestLongInputs(t *testing.T) {
	rng := rand.New(rand.NewSource(0xabad1dea))
	for _, n := range []int{1000, 4096, 64 << 10, 1 << 20} {
		buf := make([]byte, n)
		rng.Read(buf)
		want := refSum32(buf)
		if got := Sum32(buf); got != want {
			t.Errorf("length %d: got %08x, want %08x", n, got, want)
		}
		if got := Sum32String(string(buf)); got != want {
			t.Errorf("length %d (string): got %08x, want %08x", n, got, want)
		}
	}
}

// TestAllocSize checks that padded sizes are the smallest whole number of
// blocks with room for payload, marker and trailer.
func TestAllocSize(t *testing.T) {
	for n := 0; n <= 1024; n++ {
		got := allocSize(n)
		if got%BlockSize != 0 {
			t.Fatalf("allocSize(%d) = %d, not a multiple of %d", n, got, BlockSize)
		}
		if got < n+9 {
			t.Fatalf("allocSize(%d) = %d, too small for marker and trailer", n, got)
		}
		if got-BlockSize >= n+9 {
			t.Fatalf("allocSize(%d) = %d, one block too large", n, got)
		}
	}
}

// TestRandomInput cross-checks random buffers of random lengths against
// crypto/md5.
func TestRandomInput(t *testing.T) {
	n := 500
	if testing.Short() {
		n = 100
	}

	// Use deterministic RNG.
	rng := rand.New(rand.NewSource(0xabad1dea))

	for i := 0; i < n; i++ {
		length := rng.Intn(64 << 10)
		buf := make([]byte, length)
		rng.Read(buf)

		want := refSum32(buf)
		if got := Sum32(buf); got != want {
			t.Fatalf("length %d: got %08x, want %08x", length, got, want)
		}
		if got := Sum32String(string(buf)); got != want {
			t.Fatalf("length %d (string): got %08x, want %08x", length, got, want)
		}
	}
}

// TestConcurrent hammers the one-shot functions from GOMAXPROCS goroutines
// over a shared corpus and expects every result to stay stable.
func TestConcurrent(t *testing.T) {
	rng := rand.New(rand.NewSource(0xabad1dea))
	corpus := make([]string, 64)
	want := make([]uint32, len(corpus))
	for i := range corpus {
		buf := make([]byte, rng.Intn(2048))
		rng.Read(buf)
		corpus[i] = string(buf)
		want[i] = refSum32(buf)
	}

	iterations := 10000
	if testing.Short() {
		iterations = 1000
	}

	conc := runtime.GOMAXPROCS(0)
	var wg sync.WaitGroup
	wg.Add(conc)
	for c := 0; c < conc; c++ {
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(0xabad1dea + seed))
			for i := 0; i < iterations; i++ {
				j := rng.Intn(len(corpus))
				if got := Sum32String(corpus[j]); got != want[j] {
					panic(fmt.Errorf("corpus[%d]: got %08x, want %08x", j, got, want[j]))
				}
			}
		}(int64(c))
	}
	wg.Wait()
}

func TestSum32Batch(t *testing.T) {
	rng := rand.New(rand.NewSource(0xabad1dea))
	inputs := make([]string, 1000)
	for i := range inputs {
		buf := make([]byte, rng.Intn(4096))
		rng.Read(buf)
		inputs[i] = string(buf)
	}
	inputs[0] = ""

	got := Sum32Batch(inputs)
	if len(got) != len(inputs) {
		t.Fatalf("got %d results for %d inputs", len(got), len(inputs))
	}
	for i := range inputs {
		if want := Sum32String(inputs[i]); got[i] != want {
			t.Errorf("batch[%d]: got %08x, want %08x", i, got[i], want)
		}
	}

	if out := Sum32Batch(nil); len(out) != 0 {
		t.Errorf("batch of nil inputs: got %d results", len(out))
	}
	if out := Sum32Batch([]string{}); len(out) != 0 {
		t.Errorf("batch of no inputs: got %d results", len(out))
	}
}

func TestSum32BatchSingleWorker(t *testing.T) {
	old := batchWorkers
	batchWorkers = 1
	t.Cleanup(func() { batchWorkers = old })

	inputs := []string{"", "a", "abc", strings.Repeat("x", 300)}
	got := Sum32Batch(inputs)
	for i := range inputs {
		if want := Sum32String(inputs[i]); got[i] != want {
			t.Errorf("batch[%d]: got %08x, want %08x", i, got[i], want)
		}
	}
}

var benchSink uint32

func benchmarkSum32(b *testing.B, size int) {
	input := strings.Repeat("a", size)

	b.SetBytes(int64(size))
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		benchSink = Sum32String(input)
	}
}

func BenchmarkSum32String(b *testing.B) {
	b.Run("8B", func(b *testing.B) {
		benchmarkSum32(b, 8)
	})
	b.Run("32B", func(b *testing.B) {
		benchmarkSum32(b, 32)
	})
	b.Run("64B", func(b *testing.B) {
		benchmarkSum32(b, 64)
	})
	b.Run("247B", func(b *testing.B) {
		benchmarkSum32(b, 247)
	})
	b.Run("1KB", func(b *testing.B) {
		benchmarkSum32(b, 1024)
	})
	b.Run("64KB", func(b *testing.B) {
		benchmarkSum32(b, 64*1024)
	})
	b.Run("1MB", func(b *testing.B) {
		benchmarkSum32(b, 1024*1024)
	})
}

func BenchmarkSum32StringParallel(b *testing.B) {
	input := strings.Repeat("a", 247)
	b.SetBytes(int64(len(input)))
	b.ReportAllocs()

	b.RunParallel(func(pb *testing.PB) {
		var sink uint32
		for pb.Next() {
			sink = Sum32String(input)
		}
		_ = sink
	})
}

func BenchmarkSum32Batch(b *testing.B) {
	inputs := make([]string, 1024)
	for i := range inputs {
		inputs[i] = strings.Repeat("a", 64)
	}

	b.SetBytes(int64(len(inputs) * 64))
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		out := Sum32Batch(inputs)
		benchSink = out[0]
	}
}

func benchmarkCryptoMd5(b *testing.B, size int) {
	input := bytes.Repeat([]byte{0x61}, size)

	b.SetBytes(int64(size))
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		sum := md5.Sum(input)
		benchSink = binary.BigEndian.Uint32(sum[:4])
	}
}

func BenchmarkCryptoMd5(b *testing.B) {
	b.Run("64B", func(b *testing.B) {
		benchmarkCryptoMd5(b, 64)
	})
	b.Run("1KB", func(b *testing.B) {
		benchmarkCryptoMd5(b, 1024)
	})
	b.Run("64KB", func(b *testing.B) {
		benchmarkCryptoMd5(b, 64*1024)
	})
	b.Run("1MB", func(b *testing.B) {
		benchmarkCryptoMd5(b, 1024*1024)
	})
}

func benchmarkMurmur3(b *testing.B, size int) {
	input := bytes.Repeat([]byte{0x61}, size)

	b.SetBytes(int64(size))
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		benchSink = murmur3.Sum32(input)
	}
}

// Murmur3 is the usual non-cryptographic 32-bit baseline.
func BenchmarkMurmur3(b *testing.B) {
	b.Run("64B", func(b *testing.B) {
		benchmarkMurmur3(b, 64)
	})
	b.Run("1KB", func(b *testing.B) {
		benchmarkMurmur3(b, 1024)
	})
	b.Run("64KB", func(b *testing.B) {
		benchmarkMurmur3(b, 64*1024)
	})
	b.Run("1MB", func(b *testing.B) {
		benchmarkMurmur3(b, 1024*1024)
	})
}
