package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{`      _             _        `, "#818cf8"},
	{`  ___| |_ _ __ __ _| |_ __ _ `, "#a78bfa"},
	{` / __| __| '__/ _' | __/ _' |`, "#c084fc"},
	{` \__ \ |_| | | (_| | || (_| |`, "#e879f9"},
	{` |___/\__|_|  \__,_|\__\__,_|`, "#f472b6"},
}

// PrintBanner writes the strata banner, coloured when p supports it.
func PrintBanner(w io.Writer, p termenv.Profile) {
	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, p.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
