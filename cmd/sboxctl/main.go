package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/vdparikh/sbox/config"
)

const cliBanner = "sboxctl: S-box generation, analysis and AES-CBC tooling"

var (
	configPath = flag.String("config", "sbox.yml", "path to a YAML config file (optional)")

	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

func init() {
	defaultUsage := flag.Usage
	flag.Usage = func() {
		out := flag.CommandLine.Output()
		fmt.Fprintln(out, cliBanner)
		fmt.Fprintln(out)
		fmt.Fprintln(out, "commands: generate, analyze, explore, encrypt-text, decrypt-text,")
		fmt.Fprintln(out, "          encrypt-file, decrypt-file, keygen")
		fmt.Fprintln(out)
		if defaultUsage != nil {
			defaultUsage()
		}
	}
}

func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}
	os.Exit(run(*configPath, args))
}

type command func(env *cliEnv, args []string) int

var commands = map[string]command{
	"generate":     runGenerate,
	"analyze":      runAnalyze,
	"explore":      runExplore,
	"encrypt-text": runEncryptText,
	"decrypt-text": runDecryptText,
	"encrypt-file": runEncryptFile,
	"decrypt-file": runDecryptFile,
	"keygen":       runKeygen,
}

// cliEnv carries the resolved configuration and logger into subcommands.
type cliEnv struct {
	cfg    config.Config
	logger *logrus.Logger
}

func run(cfgPath string, args []string) int {
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "unknown command: %s\n", args[0])
		return 2
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(stderr, "load config: %v\n", err)
		return 1
	}
	return cmd(&cliEnv{cfg: cfg, logger: newLogger(cfg)}, args[1:])
}

func newLogger(cfg config.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(stderr)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logger.SetLevel(cfg.Level())
	return logger
}
