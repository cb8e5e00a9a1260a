package ui

import "github.com/charmbracelet/lipgloss"

type palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
	track lipgloss.Style
}

func newPalette(title, ok, err, warn, help string) palette {
	return palette{
		title: newBold(title),
		ok:    newBold(ok),
		err:   newBold(err),
		warn:  newStyle(warn),
		help:  newStyle(help).Italic(true),
		track: newStyle(title),
	}
}

var styles = newPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

func newStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func newBold(fg string) lipgloss.Style {
	return newStyle(fg).Bold(true)
}

// ProgressBar draws a fixed-width bar with a knob at progress (0..1).
func ProgressBar(width int, progress float64) string {
	if width <= 0 {
		return ""
	}
	progress = min(max(progress, 0), 1)
	dot := min(int(float64(width)*progress), width-1)
	out := make([]rune, 0, width)
	for i := 0; i < width; i++ {
		if i == dot {
			out = append(out, '●')
		} else {
			out = append(out, '─')
		}
	}
	return string(out)
}
