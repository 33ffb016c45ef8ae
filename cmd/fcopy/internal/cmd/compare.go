/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCompareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare <src> <dst>",
		Short: "Estimate the bottleneck and expected transfer rate for a path pair",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := loadEngine()
			if err != nil {
				return err
			}
			defer eng.Close()

			result := eng.Compare(args[0], args[1])
			fmt.Printf("source class:       %s\n", result.SourceClass)
			fmt.Printf("destination class:  %s\n", result.DestinationClass)
			fmt.Printf("bottleneck:         %s\n", result.Bottleneck)
			fmt.Printf("expected rate:      %.0f MB/s\n", result.ExpectedRateMBps)
			return nil
		},
	}
}
