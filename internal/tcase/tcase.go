// Package tcase discovers test cases on disk and orders them.
//
// A test case is a pair of files sharing a base name: <base>.in with
// the program's input and <base>.out with the expected output. Either
// side may instead be stored zstd-compressed (<base>.in.zst,
// <base>.out.zst); the rest of the engine decodes those transparently.
// Inputs live in the tests directory, expected outputs in the outputs
// directory (often the same one). Received .got files are ignored.
package tcase

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/jbachurski/taucheck/internal"
)

const (
	inputExt  = ".in"
	answerExt = ".out"
	zstExt    = ".zst"
)

// DiscoveryError reports bases that could not be paired. Discovery is
// all-or-nothing: one unmatched file fails the whole invocation
// instead of silently shrinking the test set.
type DiscoveryError struct {
	// MissingAnswers are bases that have an input but no expected
	// output; MissingInputs the other way around.
	MissingAnswers []string
	MissingInputs  []string

	// Duplicates are bases present both plain and zstd-compressed on
	// the same side, so the source of truth is ambiguous.
	Duplicates []string
}

func (e *DiscoveryError) Error() string {
	var parts []string
	if len(e.MissingAnswers) > 0 {
		parts = append(parts, fmt.Sprintf("no expected output for: %s",
			strings.Join(e.MissingAnswers, ", ")))
	}
	if len(e.MissingInputs) > 0 {
		parts = append(parts, fmt.Sprintf("no input for: %s",
			strings.Join(e.MissingInputs, ", ")))
	}
	if len(e.Duplicates) > 0 {
		parts = append(parts, fmt.Sprintf("both plain and .zst present for: %s",
			strings.Join(e.Duplicates, ", ")))
	}
	return "test discovery failed: " + strings.Join(parts, "; ")
}

// Discover pairs the input files in inputsDir with the expected-output
// files in outputsDir and returns the cases sorted by base name. The
// two directories may be the same. Zero discovered pairs is an error:
// an empty run would otherwise pass vacuously.
func Discover(inputsDir, outputsDir string) ([]internal.TestCase, error) {
	inputs, dupIn, err := scan(inputsDir, inputExt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan tests directory: %w", err)
	}
	answers, dupOut, err := scan(outputsDir, answerExt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan outputs directory: %w", err)
	}

	inBases := mapset.NewThreadUnsafeSet[string]()
	for base := range inputs {
		inBases.Add(base)
	}
	ansBases := mapset.NewThreadUnsafeSet[string]()
	for base := range answers {
		ansBases.Add(base)
	}

	missingAns := inBases.Difference(ansBases)
	missingIn := ansBases.Difference(inBases)
	dups := dupIn.Union(dupOut)
	if missingAns.Cardinality() > 0 || missingIn.Cardinality() > 0 || dups.Cardinality() > 0 {
		return nil, &DiscoveryError{
			MissingAnswers: sortedSlice(missingAns),
			MissingInputs:  sortedSlice(missingIn),
			Duplicates:     sortedSlice(dups),
		}
	}

	bases := sortedSlice(inBases)
	if len(bases) == 0 {
		return nil, fmt.Errorf("no test cases found in %s", inputsDir)
	}

	cases := make([]internal.TestCase, 0, len(bases))
	for _, base := range bases {
		inputPath := filepath.Join(inputsDir, inputs[base])
		info, err := os.Stat(inputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", inputPath, err)
		}
		cases = append(cases, internal.TestCase{
			Base:       base,
			InputPath:  inputPath,
			AnswerPath: filepath.Join(outputsDir, answers[base]),
			InputSize:  info.Size(),
		})
	}
	return cases, nil
}

// scan maps base name to file name for every <base><ext> or
// <base><ext>.zst entry of dir, also collecting bases that occur in
// both forms.
func scan(dir, ext string) (map[string]string, mapset.Set[string], error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}

	found := make(map[string]string)
	dups := mapset.NewThreadUnsafeSet[string]()
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		trimmed := strings.TrimSuffix(name, zstExt)
		if !strings.HasSuffix(trimmed, ext) {
			continue
		}
		base := strings.TrimSuffix(trimmed, ext)
		if base == "" {
			continue
		}
		if _, ok := found[base]; ok {
			dups.Add(base)
			continue
		}
		found[base] = name
	}
	return found, dups, nil
}

func sortedSlice(s mapset.Set[string]) []string {
	out := s.ToSlice()
	slices.Sort(out)
	return out
}

// Compressed reports whether path refers to a zstd-compressed file.
func Compressed(path string) bool {
	return strings.HasSuffix(path, zstExt)
}
