package textfit

import (
	"strings"
	"testing"
)

func TestBreakLinesShortTextUnchanged(t *testing.T) {
	for _, text := range []string{"HELLO WORLD", "hi", "TWELVE CHARS"} {
		lines := BreakLines(text, DynamicPolicy())
		if len(lines) != 1 || lines[0] != text {
			t.Errorf("BreakLines(%q) = %v, want single unchanged line", text, lines)
		}
	}
}

func TestBreakLinesDynamicShort(t *testing.T) {
	// 25 chars total (≤ 60), so the limit is 12 per line.
	lines := BreakLines("HAPPY BIRTHDAY DEAR ANNA", DynamicPolicy())
	if len(lines) < 2 {
		t.Fatalf("expected multiple lines, got %v", lines)
	}
	for _, line := range lines {
		if len(line) > dynamicShortLimit+2 {
			t.Errorf("line %q exceeds limit+slack", line)
		}
		if line == "" {
			t.Error("empty line produced")
		}
	}
}

func TestBreakLinesDynamicLong(t *testing.T) {
	// 70 chars total (> 60), so the limit is 22 per line.
	text := "the quick brown fox jumps over the lazy dog and keeps running onward"
	if len(text) < 61 {
		t.Fatalf("test text too short: %d", len(text))
	}
	lines := BreakLines(text, DynamicPolicy())
	if len(lines) < 2 {
		t.Fatalf("expected multiple lines, got %v", lines)
	}
	for _, line := range lines {
		if len(line) > dynamicLongLimit+2 {
			t.Errorf("line %q (%d chars) exceeds limit+slack", line, len(line))
		}
	}
	// Balanced output: the spread between longest and shortest line should
	// be no worse than the greedy packing's.
	if strings.Join(lines, " ") != text {
		t.Errorf("lines do not reassemble to input: %v", lines)
	}
}

func TestBreakLinesRebalanceAvoidsOrphan(t *testing.T) {
	// Greedy would emit "HAPPY NEW" / "YEAR TO" / "US" or similar with a
	// tiny last line; rebalancing should spread words more evenly.
	lines := BreakLines("HAPPY NEW YEAR TO US", DynamicPolicy())
	longest, shortest := 0, 1<<30
	for _, line := range lines {
		if len(line) > longest {
			longest = len(line)
		}
		if len(line) < shortest {
			shortest = len(line)
		}
	}
	if longest-shortest > 6 {
		t.Errorf("lopsided result %v (spread %d)", lines, longest-shortest)
	}
}

func TestBreakLinesRebalanceNeverAddsLines(t *testing.T) {
	texts := []string{
		"HAPPY NEW YEAR TO US",
		"one two three four five six seven",
		"a bb ccc dddd eeeee ffffff",
	}
	for _, text := range texts {
		policy := DynamicPolicy()
		limit := policy.maxChars(len(text))
		words, _ := splitOversized(strings.Fields(text), limit)
		greedy := greedyWrap(words, limit)
		lines := BreakLines(text, policy)
		if len(lines) > len(greedy) {
			t.Errorf("BreakLines(%q) has %d lines, greedy had %d", text, len(lines), len(greedy))
		}
	}
}

func TestBreakLinesForcedSplit(t *testing.T) {
	lines := BreakLines("CONGRATULATIONS", FixedFramePolicy())
	want := []string{"CONGRATU", "LATIONS"}
	if len(lines) != 2 || lines[0] != want[0] || lines[1] != want[1] {
		t.Errorf("BreakLines = %v, want %v", lines, want)
	}
}

func TestBreakLinesFixedHardCap(t *testing.T) {
	text := "alpha beta gamma delta epsilon zeta eta theta iota"
	lines := BreakLines(text, FixedFramePolicy())
	if len(lines) > fixedMaxLines {
		t.Errorf("fixed policy produced %d lines, cap is %d", len(lines), fixedMaxLines)
	}
	if strings.Join(lines, " ") != text {
		t.Errorf("lines do not reassemble to input: %v", lines)
	}
}

func TestBreakLinesEmptyAndWhitespace(t *testing.T) {
	lines := BreakLines("   ", DynamicPolicy())
	if len(lines) != 1 || lines[0] != "" {
		t.Errorf("whitespace input = %v", lines)
	}
}

func TestSplitOversizedEven(t *testing.T) {
	words, forced := splitOversized([]string{"ABCDEFGHIJKLMNOPQRSTUVWXYZAB"}, 12)
	if !forced {
		t.Fatal("expected a forced split")
	}
	// 28 chars at limit 12 → 3 chunks of ≤ 10.
	if len(words) != 3 {
		t.Fatalf("chunks = %v", words)
	}
	for _, w := range words {
		if len(w) > 12 {
			t.Errorf("chunk %q exceeds limit", w)
		}
	}
	if strings.Join(words, "") != "ABCDEFGHIJKLMNOPQRSTUVWXYZAB" {
		t.Errorf("chunks do not reassemble: %v", words)
	}
}
