// Package tui renders a copy operation's live progress as a terminal
// progress bar, polling the Engine's subscribe_progress stream.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	fprogress "github.com/fcopy-dev/fcopy/progress"
)

var colorDim = lipgloss.Color("240")

type sampleMsg fprogress.ProgressSample
type doneMsg struct {
	stats fprogress.CopyStats
	err   error
}

// Model drives a bubbletea program over one operation's progress stream.
type Model struct {
	samples <-chan fprogress.ProgressSample
	wait    func() (fprogress.CopyStats, error)

	bar    progress.Model
	sample fprogress.ProgressSample
	done   bool
	stats  fprogress.CopyStats
	err    error
}

// New constructs a Model polling samples and resolving to a terminal
// CopyStats/error once wait returns.
func New(samples <-chan fprogress.ProgressSample, wait func() (fprogress.CopyStats, error)) Model {
	return Model{
		samples: samples,
		wait:    wait,
		bar:     progress.New(progress.WithDefaultGradient()),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.pollSample(), m.awaitDone())
}

func (m Model) pollSample() tea.Cmd {
	samples := m.samples
	return func() tea.Msg {
		s, ok := <-samples
		if !ok {
			return nil
		}
		return sampleMsg(s)
	}
}

func (m Model) awaitDone() tea.Cmd {
	wait := m.wait
	return func() tea.Msg {
		stats, err := wait()
		return doneMsg{stats: stats, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.bar.Width = msg.Width - 10
		if m.bar.Width < 20 {
			m.bar.Width = 20
		}
		return m, nil

	case sampleMsg:
		m.sample = fprogress.ProgressSample(msg)
		if m.done {
			return m, nil
		}
		return m, m.pollSample()

	case doneMsg:
		m.done = true
		m.stats = msg.stats
		m.err = msg.err
		return m, tea.Quit

	case progress.FrameMsg:
		barModel, cmd := m.bar.Update(msg)
		m.bar = barModel.(progress.Model)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	if m.done {
		if m.err != nil {
			b.WriteString(fmt.Sprintf("  copy failed: %s\n", m.err))
		} else {
			b.WriteString(fmt.Sprintf("  done: %d files, %d bytes, %d errors\n",
				m.stats.FilesCopied, m.stats.BytesCopied, m.stats.Errors))
		}
		return b.String()
	}

	fraction := 0.0
	if m.sample.TreeBytesTotal > 0 {
		fraction = float64(m.sample.TreeBytesDone) / float64(m.sample.TreeBytesTotal)
	}
	b.WriteString("  " + m.bar.ViewAs(fraction) + "\n\n")
	b.WriteString(fmt.Sprintf("  %s\n", m.sample.CurrentPath))
	b.WriteString(lipgloss.NewStyle().Foreground(colorDim).Render(
		fmt.Sprintf("  %s/%s files, %.1f MB/s", fmtInt(m.sample.TreeFilesDone), fmtInt(m.sample.TreeFilesTotal), m.sample.TransferRate/(1<<20))))
	if m.sample.ETADefined {
		b.WriteString(lipgloss.NewStyle().Foreground(colorDim).Render(fmt.Sprintf(", eta %s", m.sample.ETA.Round(time.Second))))
	}
	b.WriteString("\n")
	return b.String()
}

func fmtInt(n int64) string { return fmt.Sprintf("%d", n) }
