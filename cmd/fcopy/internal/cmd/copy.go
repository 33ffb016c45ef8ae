/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/fcopy-dev/fcopy/cmd/fcopy/internal/tui"
	"github.com/fcopy-dev/fcopy/cmn/cos"
	"github.com/fcopy-dev/fcopy/progress"
	"github.com/fcopy-dev/fcopy/xcopy"
)

func newCopyCmd() *cobra.Command {
	var flags copyFlags
	c := &cobra.Command{
		Use:   "copy <src> <dst>",
		Short: "Copy a single file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCopy(args[0], args[1], flags, false)
		},
	}
	flags.register(c)
	return c
}

func newCopyTreeCmd() *cobra.Command {
	var flags copyFlags
	c := &cobra.Command{
		Use:   "copy-tree <src> <dst>",
		Short: "Copy a directory tree",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCopy(args[0], args[1], flags, true)
		},
	}
	flags.register(c)
	return c
}

// copyOp matches both Engine.CopyFile and Engine.CopyTree's signature.
type copyOp func(ctx context.Context, src, dst string, opts xcopy.Options) (progress.CopyStats, string, error)

func runCopy(src, dst string, flags copyFlags, tree bool) error {
	eng, err := loadEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	var op copyOp = eng.CopyFile
	if tree {
		op = eng.CopyTree
	}
	opts := flags.options()

	// A caught SIGINT/SIGTERM cancels the copy's context; the specific
	// signal is carried through caughtCh (rather than a shared variable)
	// so the final error can still report its Unix exit code
	// (cos.ErrSignal.ExitCode) without a data race against this goroutine.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	caughtCh := make(chan syscall.Signal, 1)
	go func() {
		select {
		case s := <-sigCh:
			if sig, ok := s.(syscall.Signal); ok {
				caughtCh <- sig
			}
			cancel()
		case <-ctx.Done():
		}
	}()

	var stats progress.CopyStats
	var opErr error
	done := make(chan struct{})
	opIDCh := make(chan string, 1)

	// The copy runs on its own goroutine so the progress view can poll
	// subscribe_progress concurrently; the op-id isn't known until
	// registry.Register runs inside CopyFile/CopyTree, so the caller
	// waits for either the id or early completion before subscribing.
	go func() {
		defer close(done)
		s, opID, err := op(ctx, src, dst, opts)
		select {
		case opIDCh <- opID:
		default:
		}
		stats, opErr = s, err
	}()

	var samples <-chan progress.ProgressSample
	select {
	case opID := <-opIDCh:
		if opID != "" {
			samples, _ = eng.SubscribeProgress(opID)
		}
	case <-done:
	}
	if samples == nil {
		samples = make(chan progress.ProgressSample)
	}

	model := tui.New(samples, func() (progress.CopyStats, error) {
		<-done
		return stats, opErr
	})
	if _, err := tea.NewProgram(model).Run(); err != nil {
		return err
	}

	if opErr != nil {
		select {
		case caught := <-caughtCh:
			return cos.NewSignalError(caught)
		default:
			return opErr
		}
	}
	fmt.Printf("copied %d file%s, %s, %d error%s\n",
		stats.FilesCopied, cos.Plural(int(stats.FilesCopied)),
		cos.ToSizeIEC(stats.BytesCopied, 1),
		stats.Errors, cos.Plural(int(stats.Errors)))
	return nil
}
