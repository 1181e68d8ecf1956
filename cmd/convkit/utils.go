package main

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
)

var (
	// https://github.com/muesli/termenv/blob/master/ansicolors.go
	red       = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	green     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	cyan      = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	gray      = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	lightGray = lipgloss.NewStyle().Foreground(lipgloss.Color("248"))
	bold      = lipgloss.NewStyle().Bold(true)
)

const convKitArt = `
 ___  ___  _ __ __   __ | | __(_)| |_
/ __|/ _ \| '_ \\ \ / / | |/ /| || __|
| (__| (_) | | | |\ V /  |   < | || |_
 \___|\___/|_| |_| \_/   |_|\_\|_| \__|
`

func showHeader(w io.Writer) {
	color.New(color.FgHiCyan, color.Bold).Fprint(w, convKitArt+"\n")
}
