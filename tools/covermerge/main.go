//go:build tools

// covermerge combines the coverage profiles of the unit and integration
// test runs into a single profile.
//
//	go run -tags tools ./tools/covermerge -o coverage.out unit.cover integration.cover
package main

import (
	"bufio"
	"cmp"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"golang.org/x/tools/cover"
)

type blockKey struct {
	startLine, startCol, endLine, endCol int
}

func main() {
	out := flag.String("o", "coverage.out", "merged profile to write")
	flag.Parse()

	inputs := flag.Args()
	if len(inputs) == 0 {
		var err error
		if inputs, err = filepath.Glob("*.cover"); err != nil {
			fmt.Fprintf(os.Stderr, "failed to find .cover files: %v\n", err)
			os.Exit(1)
		}
	}

	if len(inputs) == 0 {
		fmt.Fprintln(os.Stderr, "warning: no .cover files found")
		return
	}

	var profiles []*cover.Profile
	for _, in := range inputs {
		p, err := cover.ParseProfiles(in)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to parse %s: %v\n", in, err)
			os.Exit(1)
		}

		profiles = append(profiles, p...)
	}

	merged, err := merge(profiles)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create %s: %v\n", *out, err)
		os.Exit(1)
	}
	defer f.Close()

	if err := write(f, merged); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write %s: %v\n", *out, err)
		os.Exit(1)
	}

	fmt.Printf("merged %d profiles into %s\n", len(inputs), *out)
}

// merge folds profiles of the same file together. Counts add up in count
// and atomic mode; in set mode a block is covered if any run covered it.
func merge(profiles []*cover.Profile) ([]*cover.Profile, error) {
	byFile := make(map[string]*cover.Profile)
	blocks := make(map[string]map[blockKey]int)

	var mode string

	for _, p := range profiles {
		if mode == "" {
			mode = p.Mode
		} else if p.Mode != mode {
			return nil, fmt.Errorf("cannot merge %s profile of %s into %s profiles", p.Mode, p.FileName, mode)
		}

		dst, ok := byFile[p.FileName]
		if !ok {
			dst = &cover.Profile{FileName: p.FileName, Mode: p.Mode}
			byFile[p.FileName] = dst
			blocks[p.FileName] = make(map[blockKey]int)
		}

		index := blocks[p.FileName]
		for _, b := range p.Blocks {
			key := blockKey{b.StartLine, b.StartCol, b.EndLine, b.EndCol}

			i, seen := index[key]
			if !seen {
				index[key] = len(dst.Blocks)
				dst.Blocks = append(dst.Blocks, b)

				continue
			}

			if mode == "set" {
				dst.Blocks[i].Count = max(dst.Blocks[i].Count, b.Count)
			} else {
				dst.Blocks[i].Count += b.Count
			}
		}
	}

	merged := make([]*cover.Profile, 0, len(byFile))
	for _, p := range byFile {
		slices.SortFunc(p.Blocks, func(a, b cover.ProfileBlock) int {
			return cmp.Or(cmp.Compare(a.StartLine, b.StartLine), cmp.Compare(a.StartCol, b.StartCol))
		})
		merged = append(merged, p)
	}

	slices.SortFunc(merged, func(a, b *cover.Profile) int { return cmp.Compare(a.FileName, b.FileName) })

	return merged, nil
}

func write(w io.Writer, profiles []*cover.Profile) error {
	if len(profiles) == 0 {
		return nil
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "mode: %s\n", profiles[0].Mode)

	for _, p := range profiles {
		for _, b := range p.Blocks {
			fmt.Fprintf(bw, "%s:%d.%d,%d.%d %d %d\n",
				p.FileName, b.StartLine, b.StartCol, b.EndLine, b.EndCol, b.NumStmt, b.Count)
		}
	}

	return bw.Flush()
}
