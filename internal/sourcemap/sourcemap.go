// Package sourcemap emits source map v3 documents for the generated CSS and
// JS bundles. Mappings are line-granular: each generated line points at the
// source file and line it was produced from.
package sourcemap

import (
	"encoding/json"
	"strings"
)

const base64Chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

type segment struct {
	genCol  int
	srcIdx  int
	srcLine int
	srcCol  int
}

// Builder accumulates line mappings for one generated file.
type Builder struct {
	file     string
	sources  []string
	srcIndex map[string]int
	lines    map[int][]segment
	maxLine  int
}

// NewBuilder starts a map for the named generated file.
func NewBuilder(file string) *Builder {
	return &Builder{
		file:     file,
		srcIndex: make(map[string]int),
		lines:    make(map[int][]segment),
	}
}

// AddSource registers a source file and returns its index. Registering the
// same source twice returns the original index.
func (b *Builder) AddSource(source string) int {
	if idx, ok := b.srcIndex[source]; ok {
		return idx
	}
	idx := len(b.sources)
	b.sources = append(b.sources, source)
	b.srcIndex[source] = idx
	return idx
}

// AddMapping records that generated line genLine (0-based) comes from the
// given source file at srcLine (0-based).
func (b *Builder) AddMapping(genLine int, source string, srcLine int) {
	idx := b.AddSource(source)
	b.lines[genLine] = append(b.lines[genLine], segment{0, idx, srcLine, 0})
	if genLine > b.maxLine {
		b.maxLine = genLine
	}
}

type mapJSON struct {
	Version  int      `json:"version"`
	File     string   `json:"file"`
	Sources  []string `json:"sources"`
	Names    []string `json:"names"`
	Mappings string   `json:"mappings"`
}

// JSON renders the accumulated mappings as a source map v3 document.
func (b *Builder) JSON() ([]byte, error) {
	sources := b.sources
	if sources == nil {
		sources = []string{}
	}
	return json.Marshal(mapJSON{
		Version:  3,
		File:     b.file,
		Sources:  sources,
		Names:    []string{},
		Mappings: b.encodeMappings(),
	})
}

func (b *Builder) encodeMappings() string {
	var sb strings.Builder
	prevSrcIdx, prevSrcLine, prevSrcCol := 0, 0, 0

	for line := 0; line <= b.maxLine; line++ {
		if line > 0 {
			sb.WriteByte(';')
		}
		prevGenCol := 0
		for i, seg := range b.lines[line] {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeVLQ(&sb, seg.genCol-prevGenCol)
			writeVLQ(&sb, seg.srcIdx-prevSrcIdx)
			writeVLQ(&sb, seg.srcLine-prevSrcLine)
			writeVLQ(&sb, seg.srcCol-prevSrcCol)
			prevGenCol = seg.genCol
			prevSrcIdx = seg.srcIdx
			prevSrcLine = seg.srcLine
			prevSrcCol = seg.srcCol
		}
	}
	return sb.String()
}

func writeVLQ(sb *strings.Builder, value int) {
	v := value << 1
	if value < 0 {
		v = (-value << 1) | 1
	}
	for {
		digit := v & 0x1f
		v >>= 5
		if v > 0 {
			digit |= 0x20
		}
		sb.WriteByte(base64Chars[digit])
		if v == 0 {
			break
		}
	}
}
