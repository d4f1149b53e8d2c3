// Package output prints styled status lines for the command-line entry point.
package output

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#3B82F6"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

func Success(format string, args ...any) {
	fmt.Println(successStyle.Render("✓ ") + fmt.Sprintf(format, args...))
}

func Warning(format string, args ...any) {
	fmt.Println(warningStyle.Render("⚠ ") + fmt.Sprintf(format, args...))
}

func Error(format string, args ...any) {
	fmt.Println(errorStyle.Render("✗ ") + fmt.Sprintf(format, args...))
}

func Info(format string, args ...any) {
	fmt.Println(infoStyle.Render("ℹ ") + fmt.Sprintf(format, args...))
}

// KeyValue prints an aligned, muted label followed by its value.
func KeyValue(key, value string) {
	fmt.Println(mutedStyle.Width(12).Render(key) + value)
}
