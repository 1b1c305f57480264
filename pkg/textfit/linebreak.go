package textfit

import "strings"

// LinePolicy controls how BreakLines splits text.
type LinePolicy struct {
	// MaxLines caps the line count. 0 means unbounded up to softLineCap.
	MaxLines int
	// Slack is how many characters a rebalanced line may exceed the
	// per-line limit by.
	Slack int

	// maxChars returns the per-line character limit for a given total
	// text length.
	maxChars func(totalLen int) int
	// balanceable reports whether a greedy result of n lines should go
	// through the rebalancing pass.
	balanceable func(n int) bool
}

const (
	// softLineCap bounds the dynamic policy's otherwise unbounded line count.
	softLineCap = 8
	// maxBalanceWords is the recursion safety limit for the partition
	// search: beyond this many words the greedy result stands.
	maxBalanceWords = 12

	dynamicShortLimit = 12
	dynamicLongLimit  = 22
	dynamicThreshold  = 60

	fixedLimit    = 13
	fixedMaxLines = 3
)

// DynamicPolicy is used for growing-container templates: short texts break
// at 12 characters per line, longer texts (over 60 characters total) at 22.
func DynamicPolicy() LinePolicy {
	return LinePolicy{
		MaxLines: 0,
		Slack:    2,
		maxChars: func(total int) int {
			if total <= dynamicThreshold {
				return dynamicShortLimit
			}
			return dynamicLongLimit
		},
		balanceable: func(n int) bool { return n >= 2 },
	}
}

// FixedFramePolicy is used for templates with a raster background, where the
// container cannot grow: at most 13 characters per line and 3 lines.
func FixedFramePolicy() LinePolicy {
	return LinePolicy{
		MaxLines: fixedMaxLines,
		Slack:    2,
		maxChars: func(int) int { return fixedLimit },
		balanceable: func(n int) bool { return n == 2 || n == 3 },
	}
}

// BreakLines converts text into an ordered list of lines under the policy.
// It is pure and deterministic and never fails: text already within the
// per-line limit is returned unchanged as a single line.
func BreakLines(text string, policy LinePolicy) []string {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return []string{""}
	}
	limit := policy.maxChars(len(text))
	if len(text) <= limit {
		return []string{text}
	}

	words, forced := splitOversized(strings.Fields(text), limit)
	lines := greedyWrap(words, limit)

	if policy.MaxLines > 0 && len(lines) > policy.MaxLines {
		// Overflow beyond the hard cap is merged into the last line; the
		// auto-fit stage shrinks it to fit.
		merged := strings.Join(lines[policy.MaxLines-1:], " ")
		lines = append(lines[:policy.MaxLines-1], merged)
	}
	if policy.MaxLines == 0 && len(lines) > softLineCap {
		merged := strings.Join(lines[softLineCap-1:], " ")
		lines = append(lines[:softLineCap-1], merged)
	}

	// Rebalancing only moves whole words across line boundaries; once a word
	// has been force-split its chunks must stay on their own lines, so the
	// pass is skipped entirely.
	if !forced && policy.balanceable(len(lines)) && len(words) <= maxBalanceWords {
		if balanced, ok := rebalance(words, len(lines), limit+policy.Slack); ok {
			lines = balanced
		}
	}
	return lines
}

// splitOversized force-splits any single word longer than the per-line
// limit into even chunks, none exceeding the limit. The second return value
// reports whether any split happened.
func splitOversized(words []string, limit int) ([]string, bool) {
	out := make([]string, 0, len(words))
	forced := false
	for _, w := range words {
		if len(w) <= limit {
			out = append(out, w)
			continue
		}
		forced = true
		chunks := (len(w) + limit - 1) / limit
		size := (len(w) + chunks - 1) / chunks
		for start := 0; start < len(w); start += size {
			end := start + size
			if end > len(w) {
				end = len(w)
			}
			out = append(out, w[start:end])
		}
	}
	return out, forced
}

// greedyWrap packs words into lines left to right.
func greedyWrap(words []string, limit int) []string {
	var lines []string
	current := words[0]
	for _, w := range words[1:] {
		if len(current)+1+len(w) <= limit {
			current += " " + w
			continue
		}
		lines = append(lines, current)
		current = w
	}
	return append(lines, current)
}

// rebalance searches all word-boundary partitions of words into exactly n
// lines and returns the one minimizing (longest line − shortest line).
// Candidates whose longest line exceeds hardLimit are rejected. This is what
// prevents visually lopsided output like one long line plus a two-character
// line. The returned partition never has more lines than the greedy result.
func rebalance(words []string, n, hardLimit int) ([]string, bool) {
	if n < 2 || n > len(words) {
		return nil, false
	}
	var (
		best      []string
		bestScore = -1
	)
	partition(words, n, nil, func(candidate []string) {
		longest, shortest := 0, hardLimit+1
		for _, line := range candidate {
			if len(line) > longest {
				longest = len(line)
			}
			if len(line) < shortest {
				shortest = len(line)
			}
		}
		if longest > hardLimit {
			return
		}
		score := longest - shortest
		if bestScore < 0 || score < bestScore {
			bestScore = score
			best = append([]string(nil), candidate...)
		}
	})
	return best, best != nil
}

// partition enumerates every split of words into n contiguous non-empty
// groups, calling visit with each candidate's joined lines.
func partition(words []string, n int, acc []string, visit func([]string)) {
	if n == 1 {
		visit(append(acc, strings.Join(words, " ")))
		return
	}
	// Leave at least one word per remaining line.
	for i := 1; i <= len(words)-n+1; i++ {
		partition(words[i:], n-1, append(acc, strings.Join(words[:i], " ")), visit)
	}
}
