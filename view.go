package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	fallbackWidth  = 80
	minSeekerWidth = 10
	kittyDeleteAll = "\033_Ga=d,d=A\033\\"
)

// seekerFill converts a seeker percentage into filled cells of a bar of
// width cells. Out-of-range progress is clamped for drawing only.
func seekerFill(percent float64, width int) int {
	filled := int(percent / 100 * float64(width))
	return max(0, min(width, filled))
}

func (m model) View() string {
	// Get config snapshot for rendering
	cfg := config.Get()

	seek := m.controller.Seeker()
	track := m.controller.CurrentTrack()

	width := m.width
	if width <= 0 {
		width = fallbackWidth
	}

	// Use lipgloss.Color to validate the color input
	color := lipgloss.Color(m.color)
	highlight := lipgloss.NewStyle().Foreground(color)
	white := lipgloss.NewStyle().Foreground(lipgloss.Color("15")) // ANSI white
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	titleStyle := lipgloss.NewStyle().Foreground(color).Bold(true)

	borderStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(0, 2)

	showArt := m.artworkEncoded != "" && m.supportsKitty && cfg.Artwork.Enabled
	artPad := 0
	if showArt {
		artPad = cfg.Artwork.WidthColumns + 2
	}

	// Controls and seeker on the first line
	controls := highlight.Render(iconPrevious) + "  " +
		titleStyle.Render(seek.PlayIcon) + "  " +
		highlight.Render(iconNext)
	elapsed := highlight.Render(seek.ElapsedLabel)
	remaining := highlight.Render(seek.RemainingLabel)

	// Border and horizontal padding take 6 columns
	inner := width - 6 - artPad
	barWidth := inner - lipgloss.Width(controls) - lipgloss.Width(elapsed) - lipgloss.Width(remaining) - 5
	barWidth = max(minSeekerWidth, barWidth)

	filled := seekerFill(seek.Percent, barWidth)
	seeker := highlight.Render(strings.Repeat("█", filled)) +
		white.Render(strings.Repeat("─", barWidth-filled))

	controlLine := controls + "   " + elapsed + " " + seeker + " " + remaining

	// Track and artist on the second line
	maxLen := cfg.Text.MaxLength
	infoLine := titleStyle.Render(scrollText(track.TrackName, maxLen, m.scrollOffset)) +
		mutedStyle.Render("  ·  ") +
		dimStyle.Render(scrollText(track.ArtistName, maxLen, m.scrollOffset))

	content := controlLine + "\n" + infoLine

	if showArt {
		content = m.artworkEncoded + lipgloss.NewStyle().PaddingLeft(artPad).Render(content)
	} else if m.supportsKitty {
		// Remove any image left from an earlier frame
		content = kittyDeleteAll + content
	}

	bar := borderStyle.Width(width - 2).Render(content)

	var helpText string
	if m.showHelp {
		helpText = m.help.View(keys)
	} else {
		helpText = mutedStyle.Render("Press ? for help")
	}

	var ui string
	vertical := lipgloss.Bottom
	if cfg.UI.Dock == "top" {
		vertical = lipgloss.Top
		ui = lipgloss.JoinVertical(lipgloss.Left, bar, " "+helpText)
	} else {
		ui = lipgloss.JoinVertical(lipgloss.Left, " "+helpText, bar)
	}

	return lipgloss.Place(width, m.height, lipgloss.Left, vertical, ui)
}
