// Package main implements the lencyc compiler CLI.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Microindole/lency/internal/config"
	"github.com/Microindole/lency/internal/driver"
)

func main() {
	var (
		stdlibRoot  string
		srcRoot     string
		strict      bool
		backendName string
	)

	rootCmd := &cobra.Command{
		Use:          "lencyc",
		Short:        "Lency - an ahead-of-time compiler for the Lency language",
		Version:      config.Version,
		SilenceUsage: true,
	}

	loadConfig := func(path string) (*config.Config, error) {
		projectRoot := filepath.Dir(path)
		cfg, err := config.Load(projectRoot)
		if err != nil {
			return nil, err
		}
		if srcRoot != "" {
			cfg.SrcRoot = srcRoot
		}
		if stdlibRoot != "" {
			cfg.StdlibRoot = stdlibRoot
		}
		if strict {
			cfg.Strict = true
		}
		return cfg, nil
	}

	checkCmd := &cobra.Command{
		Use:   "check <file.lcy>",
		Short: "Run the frontend only: parse, resolve, type-check, monomorphize",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(args[0])
			if err != nil {
				return err
			}
			os.Exit(driver.Check(args[0], cfg))
			return nil
		},
	}

	buildCmd := &cobra.Command{
		Use:   "build <file.lcy>",
		Short: "Compile to a native executable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(args[0])
			if err != nil {
				return err
			}
			os.Exit(driver.Build(args[0], cfg, backendName))
			return nil
		},
	}

	runCmd := &cobra.Command{
		Use:   "run <file.lcy>",
		Short: "Compile and execute",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(args[0])
			if err != nil {
				return err
			}
			code := driver.Build(args[0], cfg, backendName)
			if code != driver.ExitOK {
				os.Exit(code)
			}
			exe := config.TrimSourceExt(args[0])
			if _, err := os.Stat(exe); err != nil {
				// The contract backend verifies without emitting.
				fmt.Fprintln(os.Stderr, "lencyc: nothing to run (no native backend linked)")
				os.Exit(driver.ExitOK)
			}
			run := exec.Command(exe)
			run.Stdin, run.Stdout, run.Stderr = os.Stdin, os.Stdout, os.Stderr
			if err := run.Run(); err != nil {
				if exitErr, ok := err.(*exec.ExitError); ok {
					os.Exit(exitErr.ExitCode())
				}
				return err
			}
			return nil
		},
	}

	for _, cmd := range []*cobra.Command{checkCmd, buildCmd, runCmd} {
		cmd.Flags().StringVar(&stdlibRoot, "stdlib", "", "standard library root (overrides lency.yaml)")
		cmd.Flags().StringVar(&srcRoot, "src", "", "project source root (overrides lency.yaml)")
		cmd.Flags().BoolVar(&strict, "strict", false, "treat warnings as errors")
	}
	buildCmd.Flags().StringVar(&backendName, "backend", "contract", "code generation backend")
	runCmd.Flags().StringVar(&backendName, "backend", "contract", "code generation backend")

	rootCmd.AddCommand(checkCmd, buildCmd, runCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "lencyc: %v\n", err)
		os.Exit(driver.ExitInternal)
	}
}
