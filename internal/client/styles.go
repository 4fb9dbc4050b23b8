package client

import "github.com/charmbracelet/lipgloss"

// 画面で共通して使うスタイル。
var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).MarginBottom(1)
	helpStyle    = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#888888"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF5F87"))
	labelStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFA500")).Width(16)
	panelStyle   = lipgloss.NewStyle().Padding(1, 2).Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("62"))
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	headerStyle  = cellStyle.Bold(true).Foreground(lipgloss.Color("#FFA500"))
)
