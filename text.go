package main

import (
	"fmt"
)

// formatClock converts seconds to M:SS, padding seconds below 10
func formatClock(seconds int) string {
	minutes := seconds / 60
	if seconds < 0 && seconds%60 != 0 {
		minutes-- // floor, so the seconds part stays non-negative
	}
	rest := seconds - minutes*60
	return fmt.Sprintf("%d:%02d", minutes, rest)
}

// scrollText returns a scrolling window of text with smooth looping
func scrollText(text string, max int, offset int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}

	// Padding between the end and the restart of the loop
	fullText := append(runes, []rune(scrollSeparator)...)
	textLen := len(fullText)

	// Wrap offset around
	offset = offset % textLen

	// Build visible window
	var result []rune
	for i := 0; i < max; i++ {
		result = append(result, fullText[(offset+i)%textLen])
	}
	return string(result)
}

const scrollSeparator = "  •  "
