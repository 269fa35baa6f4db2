package banner

import "testing"

func TestBannerTitleColorFromEnv(t *testing.T) {
	t.Setenv(bannerTitleColorEnv, "purple")
	color, ok := bannerTitleColorFromEnv()
	if !ok || color != bannerApplePurple {
		t.Fatalf("expected purple from env, got %d (ok=%v)", color, ok)
	}

	t.Setenv(bannerTitleColorEnv, bannerTitleColors[bannerAppleGreen])
	color, ok = bannerTitleColorFromEnv()
	if !ok || color != bannerAppleGreen {
		t.Fatalf("expected raw escape to resolve, got %d (ok=%v)", color, ok)
	}

	t.Setenv(bannerTitleColorEnv, "chartreuse")
	if _, ok := bannerTitleColorFromEnv(); ok {
		t.Fatalf("expected unknown color to be ignored")
	}
}

func TestBannerTitleColorDefault(t *testing.T) {
	t.Setenv(bannerTitleColorEnv, "")
	t.Setenv("COLORFGBG", "15;0")
	if got := bannerTitleColor(); got != bannerTitleColorDefault {
		t.Fatalf("expected default color, got %d", got)
	}
}

func TestBannerTitleColorName(t *testing.T) {
	if bannerTitleColorName(bannerAppleTeal) != "Teal" {
		t.Fatalf("unexpected name for teal")
	}
	if bannerTitleColorName(bannerColor(99)) != "" {
		t.Fatalf("expected empty name for out-of-range color")
	}
}

func TestTitleLinesHaveEqualWidth(t *testing.T) {
	width := len([]rune(titleLines[0]))
	for i, line := range titleLines {
		if got := len([]rune(line)); got != width {
			t.Fatalf("line %d has width %d, want %d", i, got, width)
		}
	}
}
