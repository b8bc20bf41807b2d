package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vdparikh/sbox"
	"gopkg.in/yaml.v3"
)

func runGenerate(env *cliEnv, args []string) int {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	matrixPath := fs.String("matrix", "", "JSON file with 8 rows of 8 {0,1} entries (default: AES matrix)")
	constant := fs.String("constant", "63", "affine constant as hex (used with --matrix)")
	format := fs.String("format", "grid", "output format: grid, hex, or json")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	s := sbox.Generate()
	if *matrixPath != "" {
		data, err := os.ReadFile(*matrixPath)
		if err != nil {
			fmt.Fprintf(stderr, "read matrix: %v\n", err)
			return 1
		}
		var rows [][]int
		if err := json.Unmarshal(data, &rows); err != nil {
			fmt.Fprintf(stderr, "parse matrix: %v\n", err)
			return 1
		}
		s, err = sbox.GenerateFromMatrixHex(rows, *constant)
		if err != nil {
			fmt.Fprintf(stderr, "generate: %v\n", err)
			return 1
		}
	}

	if ok, msg := sbox.Describe(s); !ok {
		env.logger.Warn(msg)
	}

	switch strings.ToLower(*format) {
	case "grid":
		fmt.Fprintln(stdout, s.String())
	case "hex":
		fmt.Fprintln(stdout, s.Hex())
	case "json":
		return writeJSON(s.Ints())
	default:
		fmt.Fprintf(stderr, "unknown format %q\n", *format)
		return 2
	}
	return 0
}

func runAnalyze(env *cliEnv, args []string) int {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.SetOutput(stderr)
	input := fs.String("in", "", "file containing a JSON array of 256 integers or 512 hex chars (default: AES S-box)")
	exact := fs.Bool("exact-nl", false, "also report nonlinearity over all 255 masks")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	s := sbox.Generate()
	if *input != "" {
		var err error
		s, err = readSBox(*input)
		if err != nil {
			fmt.Fprintf(stderr, "read sbox: %v\n", err)
			return 1
		}
	}

	report := sbox.Analyze(s)
	env.logger.WithFields(logrus.Fields{
		"bijective":    report.Metrics.Bijective,
		"nonlinearity": report.Metrics.Nonlinearity,
		"du":           report.Metrics.DifferentialUniformity,
	}).Debug("analyzed sbox")

	if !*exact {
		return writeJSON(report)
	}
	return writeJSON(struct {
		sbox.Report
		NonlinearityExact int `json:"nonlinearity_exact"`
	}{report, sbox.NonlinearityExact(s)})
}

// readSBox accepts the flat JSON form or a hex dump.
func readSBox(path string) (sbox.SBox, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return sbox.SBox{}, err
	}
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var values []int
		if err := json.Unmarshal([]byte(trimmed), &values); err != nil {
			return sbox.SBox{}, err
		}
		return sbox.FromInts(values)
	}
	return sbox.ParseHex(trimmed)
}

func runExplore(env *cliEnv, args []string) int {
	cfg := env.cfg.Explorer
	fs := flag.NewFlagSet("explore", flag.ContinueOnError)
	fs.SetOutput(stderr)
	n := fs.Int("n", cfg.Candidates, "number of candidates to explore (max 200)")
	top := fs.Int("top", cfg.Top, "number of ranked candidates to report (max 50)")
	seedFlag := fs.Int64("seed", -1, "random seed; negative means config seed or a random one")
	format := fs.String("format", "json", "output format: json or yaml")
	withSBox := fs.Bool("sbox", false, "include the full S-box for each candidate")
	out := fs.String("o", "", "write the summary to this file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	*n, *top = sbox.ClampRequest(*n, *top)

	seed := cfg.Seed
	if *seedFlag >= 0 {
		s := uint64(*seedFlag)
		seed = &s
	}
	if seed == nil {
		s, err := sbox.NewRandomSeed()
		if err != nil {
			fmt.Fprintf(stderr, "seed: %v\n", err)
			return 1
		}
		seed = &s
	}

	opts := append(env.cfg.ExplorerOptions(), sbox.WithLogger(env.logger.WithField("seed", *seed)))
	results, err := sbox.ExploreAffineCandidates(*n, seed, opts...)
	if err != nil {
		fmt.Fprintf(stderr, "explore: %v\n", err)
		return 1
	}
	summary := sbox.Summarize(results, *top, *withSBox)

	var data []byte
	switch strings.ToLower(*format) {
	case "json":
		data, err = json.MarshalIndent(summary, "", "  ")
	case "yaml", "yml":
		data, err = yaml.Marshal(summary)
	default:
		fmt.Fprintf(stderr, "unknown format %q\n", *format)
		return 2
	}
	if err != nil {
		fmt.Fprintf(stderr, "encode summary: %v\n", err)
		return 1
	}

	if *out == "" {
		fmt.Fprintln(stdout, strings.TrimRight(string(data), "\n"))
		return 0
	}
	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		fmt.Fprintf(stderr, "create output dir: %v\n", err)
		return 1
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		fmt.Fprintf(stderr, "write summary: %v\n", err)
		return 1
	}
	env.logger.WithFields(logrus.Fields{"path": *out, "candidates": summary.TopN}).Info("wrote exploration summary")
	return 0
}

func writeJSON(v interface{}) int {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(stderr, "encode output: %v\n", err)
		return 1
	}
	return 0
}
