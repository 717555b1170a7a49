// Package ui holds the terminal output helpers shared by the CLI commands.
// Library packages never print; everything user-facing funnels through here.
package ui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/pterm/pterm"
)

var (
	primaryColor   = lipgloss.Color("#7C5CFF")
	successColor   = lipgloss.Color("#00C67A")
	warningColor   = lipgloss.Color("#FFB800")
	errorColor     = lipgloss.Color("#FF4D4D")
	secondaryColor = lipgloss.Color("#6C757D")

	titleStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(warningColor).
			Bold(true)

	secondaryStyle = lipgloss.NewStyle().
			Foreground(secondaryColor)
)

// PrintHeader prints the command banner.
func PrintHeader(title string, subtitle string) {
	width := 72
	if w := pterm.GetTerminalWidth(); w > 0 && w < width {
		width = w
	}

	header := lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(primaryColor).
		Padding(0, 2).
		Render(lipgloss.JoinVertical(
			lipgloss.Center,
			titleStyle.Render(title),
			secondaryStyle.Render(subtitle),
		))

	fmt.Println(header)
	fmt.Println()
}

// PrintSuccess prints a success message.
func PrintSuccess(format string, args ...any) {
	fmt.Println(successStyle.Render("✓ " + fmt.Sprintf(format, args...)))
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintln(os.Stderr, errorStyle.Render("✗ "+fmt.Sprintf(format, args...)))
}

// PrintWarning prints a warning message.
func PrintWarning(format string, args ...any) {
	fmt.Println(warningStyle.Render("⚠ " + fmt.Sprintf(format, args...)))
}

// PrintInfo prints an informational message.
func PrintInfo(format string, args ...any) {
	fmt.Println(secondaryStyle.Render(fmt.Sprintf(format, args...)))
}

// PrintStep prints a step indicator during multi-query runs.
func PrintStep(step int, total int, message string) {
	prefix := secondaryStyle.Render(fmt.Sprintf("[%d/%d]", step, total))
	fmt.Printf("%s %s\n", prefix, message)
}

// PrintTable renders rows with a header line.
func PrintTable(headers []string, rows [][]string) {
	data := pterm.TableData{headers}
	data = append(data, rows...)
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

// Spinner starts a spinner and returns it for the caller to stop.
func Spinner(message string) (*pterm.SpinnerPrinter, error) {
	return pterm.DefaultSpinner.Start(message)
}

// PrintMarkdown renders markdown to the terminal.
func PrintMarkdown(content string) error {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return err
	}
	out, err := r.Render(content)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

// Printers returns fatih/color printers for ad hoc colored output.
func Printers() map[string]*color.Color {
	return map[string]*color.Color{
		"success": color.New(color.FgGreen, color.Bold),
		"error":   color.New(color.FgRed, color.Bold),
		"warning": color.New(color.FgYellow, color.Bold),
		"info":    color.New(color.FgCyan),
	}
}
