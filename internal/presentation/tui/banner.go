package tui

import (
	"fmt"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the ASCII art banner for Lathe.
func PrintBanner(version string) {
	p := termenv.ColorProfile()
	// Using a subtle gradient-like color scheme (Indigo/Violet)
	s1 := termenv.String(" _       _   _          ").Foreground(p.Color("#818cf8"))
	s2 := termenv.String("| | __ _| |_| |__   ___ ").Foreground(p.Color("#a78bfa"))
	s3 := termenv.String("| |/ _` | __| '_ \\ / _ \\").Foreground(p.Color("#c084fc"))
	s4 := termenv.String("| | (_| | |_| | | |  __/").Foreground(p.Color("#e879f9"))
	s5 := termenv.String("|_|\\__,_|\\__|_| |_|\\___|").Foreground(p.Color("#f472b6"))
	tag := termenv.String("v" + version).Foreground(p.Color("#fb7185")).Faint()

	fmt.Println()
	fmt.Println(s1)
	fmt.Println(s2)
	fmt.Println(s3)
	fmt.Println(s4)
	fmt.Println(s5)
	fmt.Println(tag)
	fmt.Println()
}
