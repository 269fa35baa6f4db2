package banner

import (
	"fmt"
	"os"
	"strings"

	"github.com/thirukguru/receipt-parser/shared/ansi"
	"github.com/thirukguru/receipt-parser/shared/console"
	"golang.org/x/term"
)

type bannerColor int

const (
	bannerAppleBlue bannerColor = iota
	bannerAppleGreen
	bannerAppleOrange
	bannerApplePink
	bannerApplePurple
	bannerAppleRed
	bannerAppleYellow
	bannerAppleTeal
)

var bannerTitleColors = []string{
	"\x1b[38;2;0;122;255m",  // Blue
	"\x1b[38;2;52;199;89m",  // Green
	"\x1b[38;2;255;149;0m",  // Orange
	"\x1b[38;2;255;45;85m",  // Pink
	"\x1b[38;2;175;82;222m", // Purple
	"\x1b[38;2;255;59;48m",  // Red
	"\x1b[38;2;255;204;0m",  // Yellow
	"\x1b[38;2;90;200;250m", // Teal
}

var bannerTitleColorNames = []string{
	"Blue",
	"Green",
	"Orange",
	"Pink",
	"Purple",
	"Red",
	"Yellow",
	"Teal",
}

const (
	bannerTitleColorDefault        = bannerAppleBlue
	bannerTitleColorBlueBackground = bannerAppleYellow
	bannerTitleColorEnv            = "RECEIPT_PARSER_BANNER_COLOR"
)

var titleLines = []string{
	" ██████╗  ███████╗  ██████╗ ███████╗ ██╗ ██████╗  ████████╗",
	" ██╔══██╗ ██╔════╝ ██╔════╝ ██╔════╝ ██║ ██╔══██╗ ╚══██╔══╝",
	" ██████╔╝ █████╗   ██║      █████╗   ██║ ██████╔╝    ██║   ",
	" ██╔══██╗ ██╔══╝   ██║      ██╔══╝   ██║ ██╔═══╝     ██║   ",
	" ██║  ██║ ███████╗ ╚██████╗ ███████╗ ██║ ██║         ██║   ",
	" ╚═╝  ╚═╝ ╚══════╝  ╚═════╝ ╚══════╝ ╚═╝ ╚═╝         ╚═╝   ",
}

func printCenteredLines(lines []string, width int) {
	for _, line := range lines {
		pad := 0

		if n := len([]rune(line)); width > n {
			pad = (width - n) / 2
		}

		if pad > 0 {
			fmt.Print(strings.Repeat(" ", pad))
		}

		fmt.Println(line)
	}
}

func bannerTitleColor() bannerColor {
	if color, ok := bannerTitleColorFromEnv(); ok {
		return color
	}

	if console.IsBlueBackground() {
		return bannerTitleColorBlueBackground
	}

	return bannerTitleColorDefault
}

func bannerTitleColorFromEnv() (bannerColor, bool) {
	raw := strings.TrimSpace(os.Getenv(bannerTitleColorEnv))

	if raw == "" {
		return 0, false
	}

	for idx, color := range bannerTitleColors {
		name := bannerTitleColorName(bannerColor(idx))
		if strings.EqualFold(raw, name) || raw == color {
			return bannerColor(idx), true
		}
	}

	return 0, false
}

func bannerTitleColorName(color bannerColor) string {
	if color < 0 || int(color) >= len(bannerTitleColorNames) {
		return ""
	}

	return bannerTitleColorNames[int(color)]
}

// DrawBannerTitle prints the application title banner to stdout.
func DrawBannerTitle() {
	ansi.EnableANSI()

	width := 80

	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
	}

	fmt.Print(bannerTitleColors[bannerTitleColor()])
	printCenteredLines(titleLines, width)
	fmt.Print("\x1b[0m")
}
