package render

import (
	"strings"
	"testing"
)

func TestRenderSlotOrder(t *testing.T) {
	body := Body{
		Round:   "Winners Semi-Final",
		Station: "Station 4",
		Left:    Side{Label: "Alpha", Score: 1},
		Right:   Side{Label: "Bravo", Score: 2},
	}

	got := body.Render()
	want := "🏷️ Winners Semi-Final\n\nStation 4\n\nAlpha (1)\nvs\nBravo (2)"
	if got != want {
		t.Fatalf("render mismatch:\n got %q\nwant %q", got, want)
	}
}

func TestRenderBannerPrepended(t *testing.T) {
	body := Body{
		Banner:  BannerFinished,
		Round:   "Grand Final",
		Station: "Station 1",
		Left:    Side{Label: "Alpha", Score: 3},
		Right:   Side{Label: "Bravo", Score: 1},
	}

	got := body.Render()
	if !strings.HasPrefix(got, BannerFinished+"\n\n") {
		t.Fatalf("expected banner prefix, got %q", got)
	}
}

func TestRenderOutcomeOverridesScore(t *testing.T) {
	body := Body{
		Round:   "Pools",
		Station: "Station 9",
		Left:    Side{Label: "Alpha", Outcome: "WIN"},
		Right:   Side{Label: "Bravo", Outcome: "LOSE"},
	}

	got := body.Render()
	if !strings.Contains(got, "Alpha (**WIN**)") || !strings.Contains(got, "Bravo (**LOSE**)") {
		t.Fatalf("expected win/loss lines, got %q", got)
	}
	if strings.Contains(got, "(0)") {
		t.Fatalf("score should not render alongside an outcome: %q", got)
	}
}

func TestRenderUnknownRoundFallback(t *testing.T) {
	body := Body{Station: "Station 2"}
	if !strings.Contains(body.Render(), "Unknown Round") {
		t.Fatal("expected round fallback text")
	}
}

func TestScoreUpdateIsFieldAssignment(t *testing.T) {
	body := Body{
		Round:   "Losers Final",
		Station: "Station 2",
		Left:    Side{Label: "Alpha (the (1) great)"},
		Right:   Side{Label: "Bravo"},
	}

	body.Left.Score = 2
	body.Right.Score = 1

	got := body.Render()
	// A label containing parentheses must never confuse the score slots.
	if !strings.Contains(got, "Alpha (the (1) great) (2)") {
		t.Fatalf("left score slot corrupted: %q", got)
	}
	if !strings.Contains(got, "Bravo (1)") {
		t.Fatalf("right score slot corrupted: %q", got)
	}
}
