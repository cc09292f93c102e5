// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package corpus assembles the text buffer searched by a benchmark run.
package corpus

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
)

// Headroom is the zeroed capacity kept past the end of every text buffer.
// Plugins may write a copy of the pattern there as a search sentinel, so it
// must be at least the longest pattern.
const Headroom = 4200

var (
	// ErrEmptyCorpus is returned when a source yields no bytes.
	ErrEmptyCorpus = errors.New("empty corpus")

	// ErrNotFound is returned when a text path exists neither as given nor
	// under any data directory.
	ErrNotFound = errors.New("corpus source not found")

	// ErrInvalidAlphabet is returned for random alphabets outside 1..256.
	ErrInvalidAlphabet = errors.New("alphabet size must be between 1 and 256")

	// ErrInvalidTextSize is returned for a non-positive text buffer size.
	ErrInvalidTextSize = errors.New("text size must be positive")
)

// Corpus is an immutable text buffer and its byte statistics.
type Corpus struct {
	// Name describes the source, e.g. the text directory or "rand16".
	Name string

	data         []byte
	freq         [256]int
	alphabetSize int
	maxCode      int
}

func newCorpus(name string, buf []byte) (*Corpus, error) {
	if len(buf) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyCorpus, name)
	}
	c := &Corpus{Name: name, data: withHeadroom(buf)}
	c.computeFrequency()
	return c, nil
}

func withHeadroom(buf []byte) []byte {
	if cap(buf)-len(buf) >= Headroom {
		clear(buf[len(buf):cap(buf)])
		return buf
	}
	out := make([]byte, len(buf), len(buf)+Headroom)
	copy(out, buf)
	return out
}

func (c *Corpus) computeFrequency() {
	c.freq = [256]int{}
	for _, b := range c.data {
		c.freq[b]++
	}
	c.alphabetSize, c.maxCode = 0, 0
	for code, count := range c.freq {
		if count > 0 {
			c.alphabetSize++
			c.maxCode = code
		}
	}
}

// Bytes returns the text. The backing array extends Headroom bytes past
// the end. Callers must not modify the text.
func (c *Corpus) Bytes() []byte { return c.data }

// Len returns the text length n.
func (c *Corpus) Len() int { return len(c.data) }

// Frequency returns the 256-bucket byte histogram.
func (c *Corpus) Frequency() [256]int { return c.freq }

// AlphabetSize is the number of distinct byte values in the text.
func (c *Corpus) AlphabetSize() int { return c.alphabetSize }

// MaxCode is the highest byte value in the text.
func (c *Corpus) MaxCode() int { return c.maxCode }

// Describe returns the summary printed before a run.
func (c *Corpus) Describe() string {
	return fmt.Sprintf("Text %s: buffer of %s (%s bytes), alphabet of %d characters, greatest character code %d",
		c.Name, humanize.IBytes(uint64(c.Len())), humanize.Comma(int64(c.Len())), c.alphabetSize, c.maxCode)
}

// Fill replicates the text into the tail of the buffer until it reaches
// textSize bytes. A text already that long is left alone.
func (c *Corpus) Fill(textSize int) {
	n := len(c.data)
	if n == 0 || n >= textSize {
		return
	}
	buf := make([]byte, textSize, textSize+Headroom)
	for off := 0; off < textSize; off += n {
		copy(buf[off:], c.data)
	}
	c.data = buf
	c.computeFrequency()
}

// =============================================================================
// Sources
// =============================================================================

// FromFiles concatenates the given files and directories, resolving each
// relative path against dataDirs when it does not exist as given.
// Directories contribute their regular files in name order; symlinks and
// subdirectories are skipped. Reading stops once textSize bytes are read.
func FromFiles(name string, paths, dataDirs []string, textSize int) (*Corpus, error) {
	if textSize <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTextSize, textSize)
	}
	buf := make([]byte, 0, textSize+Headroom)
	for _, p := range paths {
		if len(buf) >= textSize {
			break
		}
		resolved, err := Resolve(p, dataDirs)
		if err != nil {
			return nil, err
		}
		files, err := expand(resolved)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			if len(buf) >= textSize {
				break
			}
			if buf, err = appendFile(buf, f, textSize); err != nil {
				return nil, err
			}
		}
	}
	return newCorpus(name, buf)
}

// Resolve returns p if it exists, otherwise the first dataDir/p that does.
func Resolve(p string, dataDirs []string) (string, error) {
	if _, err := os.Stat(p); err == nil {
		return p, nil
	}
	if !filepath.IsAbs(p) {
		for _, dir := range dataDirs {
			candidate := filepath.Join(dir, p)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, p)
}

func expand(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			files = append(files, filepath.Join(path, e.Name()))
		}
	}
	return files, nil
}

func appendFile(buf []byte, path string, textSize int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return buf, err
	}
	defer f.Close()

	n, err := io.ReadFull(f, buf[len(buf):textSize])
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return buf, &fs.PathError{Op: "read", Path: path, Err: err}
	}
	return buf[:len(buf)+n], nil
}

// Random synthesises size bytes drawn uniformly from [0, alphabet).
func Random(alphabet, size int, rng *rand.Rand) (*Corpus, error) {
	if alphabet < 1 || alphabet > 256 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAlphabet, alphabet)
	}
	if size <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTextSize, size)
	}
	buf := make([]byte, size, size+Headroom)
	for i := range buf {
		buf[i] = byte(rng.IntN(alphabet))
	}
	return newCorpus(fmt.Sprintf("rand%d", alphabet), buf)
}

// Literal uses text as given, without truncation.
func Literal(text string) (*Corpus, error) {
	return newCorpus("literal", []byte(text))
}
