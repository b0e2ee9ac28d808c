package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the assetbot banner to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.EnvColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"                       _   _           _   ", "#818cf8"},
		{"   __ _ ___ ___  ___| |_| |__   ___ | |_ ", "#a78bfa"},
		{"  / _` / __/ __|/ _ \\ __| '_ \\ / _ \\| __|", "#c084fc"},
		{" | (_| \\__ \\__ \\  __/ |_| |_) | (_) | |_ ", "#e879f9"},
		{"  \\__,_|___/___/\\___|\\__|_.__/ \\___/ \\__|", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String("  IT asset requests · "+version).Faint())
	fmt.Fprintln(w)
}
