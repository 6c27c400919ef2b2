package csv

import (
	"bufio"
	"bytes"
	"io"
	"sort"
)

const rewriteChunk = 64 * 1024

// streamingRewriter is an io.Reader that performs a rolling find/replace
// without buffering the whole stream. To match sequences spanning chunk
// boundaries it withholds the last len(pat)-1 bytes of every processed block
// (the carry) and prepends them to the next block.
type streamingRewriter struct {
	br    *bufio.Reader
	pat   []byte
	repl  []byte
	chunk []byte
	carry []byte       // last len(pat)-1 bytes retained between reads
	buf   bytes.Buffer // pending output to satisfy Read
	eof   bool
}

// newStreamingRewriter wraps r with a rewriter that replaces pat with repl.
func newStreamingRewriter(r io.Reader, pat, repl []byte) *streamingRewriter {
	return &streamingRewriter{
		br:    bufio.NewReaderSize(r, rewriteChunk),
		pat:   pat,
		repl:  repl,
		chunk: make([]byte, rewriteChunk),
		carry: make([]byte, 0, max(len(pat)-1, 0)),
	}
}

// Read serves buffered output first; when empty it pulls the next chunk,
// replaces occurrences, and keeps the trailing carry for the next call. The
// carry is flushed on EOF.
func (sr *streamingRewriter) Read(p []byte) (int, error) {
	for sr.buf.Len() == 0 {
		if sr.eof {
			return 0, io.EOF
		}
		if err := sr.fill(); err != nil {
			return 0, err
		}
	}
	return sr.buf.Read(p)
}

func (sr *streamingRewriter) fill() error {
	n, rerr := sr.br.Read(sr.chunk)
	if n > 0 {
		block := make([]byte, 0, len(sr.carry)+n)
		block = append(block, sr.carry...)
		block = append(block, sr.chunk[:n]...)

		if len(sr.pat) > 0 && !bytes.Equal(sr.pat, sr.repl) {
			block = bytes.ReplaceAll(block, sr.pat, sr.repl)
		}

		k := max(len(sr.pat)-1, 0)
		if len(block) > k {
			sr.buf.Write(block[:len(block)-k])
			sr.carry = append(sr.carry[:0], block[len(block)-k:]...)
		} else {
			sr.carry = append(sr.carry[:0], block...)
		}
	}

	switch {
	case rerr == io.EOF:
		if len(sr.carry) > 0 {
			sr.buf.Write(sr.carry)
			sr.carry = sr.carry[:0]
		}
		sr.eof = true
	case rerr != nil:
		return rerr
	}
	return nil
}

// wrapRewrites chains one rewriter per from→to pair. Pairs are applied in
// sorted key order so the result does not depend on map iteration.
func wrapRewrites(r io.Reader, pairs map[string]string) io.Reader {
	if len(pairs) == 0 {
		return r
	}
	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		if k != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		r = newStreamingRewriter(r, []byte(k), []byte(pairs[k]))
	}
	return r
}
