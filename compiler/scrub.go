// ABOUTME: PII redaction for free text sent to the model
// ABOUTME: Removes emails and phone numbers and masks links behind a placeholder
package compiler

import "regexp"

// ProfilePlaceholder replaces any http(s) link found in free text.
const ProfilePlaceholder = "(LinkedIn profile available)"

var (
	emailRe = regexp.MustCompile(`(?i)[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}`)
	// Counts characters, not digits: two digits around seven or more
	// separators match, so "1-2-3-4-5" is removed along with real numbers.
	phoneRe = regexp.MustCompile(`\+?\d[\d\s().-]{7,}\d`)
	urlRe   = regexp.MustCompile(`(?i)https?://\S+`)
)

// Scrub removes email addresses and phone-like digit runs from s and replaces
// URLs with ProfilePlaceholder. Scrub(Scrub(s)) == Scrub(s) for every s.
//
// Every pass that changes s either removes an '@' or a digit, or replaces a
// "://" without adding one, so the loop always reaches a fixed point.
func Scrub(s string) string {
	for {
		next := scrubOnce(s)
		if next == s {
			return s
		}
		s = next
	}
}

// scrubOnce applies each pattern a single time. Removing one match can glue
// its neighbours into a new match, so Scrub repeats this until nothing changes.
func scrubOnce(s string) string {
	if s == "" {
		return ""
	}
	s = emailRe.ReplaceAllLiteralString(s, "")
	s = phoneRe.ReplaceAllLiteralString(s, "")
	return urlRe.ReplaceAllLiteralString(s, ProfilePlaceholder)
}
