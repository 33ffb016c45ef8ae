/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package main

import (
	"errors"
	"os"

	"github.com/fcopy-dev/fcopy/cmd/fcopy/internal/cmd"
	"github.com/fcopy-dev/fcopy/cmn/cos"
)

func main() {
	if err := cmd.Execute(); err != nil {
		var sigErr *cos.ErrSignal
		if errors.As(err, &sigErr) {
			os.Stderr.WriteString(sigErr.Error() + "\n")
			os.Exit(sigErr.ExitCode())
		}
		cos.Exitf("%v", err)
	}
}
