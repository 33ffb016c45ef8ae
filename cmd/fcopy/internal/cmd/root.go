// Package cmd wires the fcopy CLI's cobra subcommands onto the public
// fcopy.Engine API. Out of scope as a design concern (§1 treats CLIs as
// a collaborator, not core), this package exists only as the thin entry
// point that exercises copy_file/copy_tree/analyze/compare/verify.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fcopy-dev/fcopy/config"
	"github.com/fcopy-dev/fcopy/fcopy"
)

var Version = "dev"

var configPath string

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "fcopy",
		Short:         "A device-aware, resumable file and directory copy engine",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to fcopy.toml (defaults to built-in defaults)")

	root.AddCommand(newCopyCmd())
	root.AddCommand(newCopyTreeCmd())
	root.AddCommand(newAnalyzeCmd())
	root.AddCommand(newCompareCmd())
	root.AddCommand(newVerifyCmd())
	return root
}

func loadEngine() (*fcopy.Engine, error) {
	var cfg config.Config
	var err error
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg = config.Default()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return fcopy.NewEngine(cfg), nil
}
