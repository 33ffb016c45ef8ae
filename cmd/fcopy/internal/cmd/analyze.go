/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fcopy-dev/fcopy/cmn/cos"
)

func newAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <path>",
		Short: "Probe a path's storage class and zero-copy capabilities",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := loadEngine()
			if err != nil {
				return err
			}
			defer eng.Close()

			desc := eng.Analyze(args[0])
			fmt.Printf("class:              %s\n", desc.Class)
			fmt.Printf("filesystem:         %s\n", desc.Filesystem)
			fmt.Printf("filesystem_id:      %s\n", desc.FilesystemID)
			fmt.Printf("capabilities:       %s\n", desc.Capabilities)
			fmt.Printf("optimal_buffer:     %s\n", cos.ToSizeIEC(desc.OptimalBufferSize, 1))
			fmt.Printf("total/free space:   %s / %s\n", cos.ToSizeIEC(int64(desc.TotalBytes), 1), cos.ToSizeIEC(int64(desc.FreeBytes), 1))
			if usage, err := eng.DiskUsage(args[0]); err == nil {
				fmt.Printf("path size on disk:  %s\n", cos.ToSizeIEC(int64(usage), 1))
			}
			return nil
		},
	}
}
