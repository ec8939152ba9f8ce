// Copyright (c) 2024 Tagsum Inc. All rights reserved.
// Use of this source code is governed by a license that can be
// found in the LICENSE file.

// Command minimd5sum prints 32-bit MiniMD5 fingerprints of its inputs,
// following md5sum conventions: file arguments, or standard input when
// none are given.
//
//	minimd5sum file1 file2
//	cat file | minimd5sum
//	minimd5sum -s "some literal string"
//	minimd5sum -s -d "some literal string"
//
// Fingerprints print as 8 hex digits. With -d they print in decimal,
// matching what MySQL returns for
// CONV(SUBSTR(MD5(input), 1, 8), 16, 10).
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/tagsum/minimd5"
)

var (
	literal = flag.Bool("s", false, "treat arguments as literal strings instead of file names")
	decimal = flag.Bool("d", false, "print fingerprints in decimal")
)

func main() {
	flag.Parse()
	args := flag.Args()

	exit := 0
	switch {
	case *literal:
		for _, s := range args {
			report(minimd5.Sum32String(s), s)
		}
	case len(args) == 0:
		fp, err := hashReader(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "minimd5sum: stdin: %v\n", err)
			exit = 1
			break
		}
		report(fp, "-")
	default:
		for _, name := range args {
			fp, err := hashFile(name)
			if err != nil {
				fmt.Fprintf(os.Stderr, "minimd5sum: %v\n", err)
				exit = 1
				continue
			}
			report(fp, name)
		}
	}
	os.Exit(exit)
}

func report(fp uint32, name string) {
	if *decimal {
		fmt.Printf("%d  %s\n", fp, name)
		return
	}
	fmt.Printf("%08x  %s\n", fp, name)
}

func hashFile(name string) (uint32, error) {
	f, err := os.Open(name)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return hashReader(f)
}

func hashReader(r io.Reader) (uint32, error) {
	h := minimd5.New()
	if _, err := io.Copy(h, r); err != nil {
		return 0, err
	}
	return h.Sum32(), nil
}
