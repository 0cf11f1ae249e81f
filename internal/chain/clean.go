package chain

import (
	"strings"
	"unicode"
)

// Clean normalizes the generation backend's raw output. The backend is an
// untrusted payload source: it echoes instructions, doubles its own
// output, and emits markup-hostile characters, so the steps below run in
// a fixed order and each is testable on its own.
//
//  1. Lines holding only punctuation/symbol characters are blanked.
//  2. Runs of three or more blank lines collapse to exactly one.
//  3. Doubled output is repaired (exact-half equality heuristic).
//  4. Backslashes are escaped for the downstream math renderer. This must
//     follow step 3: escaping first would change the length and halves
//     compared by the repair check.
func Clean(raw string) string {
	text := stripNoiseLines(raw)
	text = collapseBlankLines(text)
	text = strings.TrimSpace(text)
	text = repairDoubledOutput(text)
	text = escapeForRenderer(text)
	return text
}

// stripNoiseLines blanks lines that carry no letters or digits at all —
// separator art like "----" or "####" that some models emit around
// answers.
func stripNoiseLines(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if isNoiseLine(line) {
			lines[i] = ""
		}
	}
	return strings.Join(lines, "\n")
}

func isNoiseLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	for _, r := range trimmed {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// collapseBlankLines reduces runs of 3+ consecutive blank lines to one.
func collapseBlankLines(text string) string {
	lines := strings.Split(text, "\n")
	var out []string
	blanks := 0
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			blanks++
			continue
		}
		if blanks > 0 {
			if blanks >= 3 {
				out = append(out, "")
			} else {
				for i := 0; i < blanks; i++ {
					out = append(out, "")
				}
			}
			blanks = 0
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// repairDoubledOutput detects a known backend failure mode where the full
// answer is echoed twice back to back. The heuristic is deliberate and
// narrow: even length, more than 50 characters, and the two halves equal
// after trimming. Near-duplicates with differing whitespace are knowingly
// missed.
func repairDoubledOutput(text string) string {
	if len(text) <= 50 || len(text)%2 != 0 {
		return text
	}
	half := len(text) / 2
	first := strings.TrimSpace(text[:half])
	second := strings.TrimSpace(text[half:])
	if first != "" && first == second {
		return first
	}
	return text
}

// escapeForRenderer doubles backslashes so LaTeX fragments survive one
// more layer of string encoding on the way to the client.
func escapeForRenderer(text string) string {
	return strings.ReplaceAll(text, `\`, `\\`)
}

// TrimSentinel cuts the sentinel end-marker and everything after it.
func TrimSentinel(text string) string {
	if i := strings.Index(text, Sentinel); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSpace(text)
}

// StripEchoedPreamble drops an echoed "Resposta:" instruction prefix,
// keeping only what follows the last occurrence, and removes lines that
// restart the instruction dialogue.
func StripEchoedPreamble(text string) string {
	if i := strings.LastIndex(text, "Resposta:"); i >= 0 {
		text = text[i+len("Resposta:"):]
	}
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(line, "Okay,") || strings.HasPrefix(line, "Parsing") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
