package main

import (
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/tdewolff/argp"

	"github.com/tdewolff/otfsubset/font"
	"github.com/tdewolff/otfsubset/opentype"
)

func main() {
	// os.Exit doesn't execute pending defer calls, this is fixed by encapsulating run()
	os.Exit(run())
}

func run() int {
	chars := []string{}
	tables := []string{}
	var output string
	var quiet bool

	cmd := argp.New("Subset an OpenType/TrueType font to the characters and tables given")
	cmd.AddOpt(&quiet, "q", "quiet", "Suppress the size summary.")
	cmd.AddOpt(argp.Append{&chars}, "c", "char", "Literal characters to keep, eg. a-z.")
	cmd.AddOpt(argp.Append{&tables}, "t", "table", "Tables to keep, eg. cmap. Defaults to head,hhea,hmtx,maxp,cmap,loca,glyf.")
	cmd.AddOpt(&output, "o", "output", "Output font file.")

	var input string
	cmd.AddArg(&input, "input", "Input font file.")
	cmd.Parse()

	Error := log.New(os.Stderr, "ERROR: ", 0)

	if output == "" {
		Error.Println("missing -o/--output")
		return 1
	}
	if len(tables) == 0 {
		tables = []string{"head", "hhea", "hmtx", "maxp", "cmap", "loca", "glyf"}
	}

	var runes []rune
	for _, s := range chars {
		prev := rune(-1)
		inRange := false
		for _, r := range s {
			switch {
			case prev != -1 && r == '-' && !inRange:
				inRange = true
			case inRange:
				for c := prev + 1; c <= r; c++ {
					runes = append(runes, c)
				}
				inRange = false
				prev = -1
			default:
				runes = append(runes, r)
				prev = r
			}
		}
		if inRange {
			runes = append(runes, '-')
		}
	}
	if len(runes) == 0 {
		Error.Println("no characters given, use -c/--char")
		return 1
	}
	sort.Slice(runes, func(i, j int) bool { return runes[i] < runes[j] })

	b, err := os.ReadFile(input)
	if err != nil {
		Error.Println(err)
		return 1
	}

	r, err := opentype.Parse(b)
	if err != nil {
		Error.Println(err)
		return 1
	}
	src, err := font.NewFont(r)
	if err != nil {
		Error.Println(err)
		return 1
	}

	out, err := font.Subset(src, r, runes, tables)
	if err != nil {
		Error.Println(err)
		return 1
	}

	if !quiet {
		fmt.Printf("%v: %v => %v (%.1f%%)\n", filepath.Base(input),
			formatBytes(uint64(len(b))), formatBytes(uint64(len(out.Program))),
			100.0*float64(len(out.Program))/float64(len(b)))
	}

	var w io.WriteCloser
	if output == "-" {
		w = os.Stdout
	} else if w, err = os.Create(output); err != nil {
		Error.Println(err)
		return 1
	}
	if _, err := w.Write(out.Program); err != nil {
		w.Close()
		Error.Println(err)
		return 1
	} else if err := w.Close(); err != nil {
		Error.Println(err)
		return 1
	}
	return 0
}

func formatBytes(size uint64) string {
	if size < 10 {
		return fmt.Sprintf("%d B", size)
	}
	units := []string{"B", "kB", "MB", "GB", "TB", "PB", "EB"}
	scale := int(math.Floor((math.Log10(float64(size)) + math.Log10(2.0)) / 3.0))
	value := float64(size) / math.Pow10(scale*3.0)
	format := "%.0f %s"
	if value < 10.0 {
		format = "%.1f %s"
	}
	return fmt.Sprintf(format, value, units[scale])
}
