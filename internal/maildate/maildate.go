// Package maildate normalizes the Date header strings found in decades of
// archived email into a single canonical form.
//
// Real mailboxes contain hand-typed dates, client-specific zone spellings,
// doubled signs, glued AM/PM markers and trailing garbage. Normalize runs a
// fixed list of textual repair rules over the input and then tries a fixed
// list of parse attempts until one succeeds. Both lists are ordered: the
// repairs go from most structurally invasive to least, because the numeric
// padding rules assume zone-name text has already been rewritten.
package maildate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Layout is the canonical output form: 24-hour wall clock, no zone suffix.
// The header's own offset is applied during parsing and the result is kept
// as the wall-clock value the header denoted.
const Layout = "2006-01-02 15:04:05"

var (
	gmtOffsetRe    = regexp.MustCompile(`GMT([+-])(\d{2}):?(\d{2})`)
	threeDigitTZRe = regexp.MustCompile(`([+-])(\d{3})\s*$`)
	shortHourRe    = regexp.MustCompile(`\b(\d):(\d{2}):(\d{2})\b`)
	shortMinSecRe  = regexp.MustCompile(`:(\d)\b`)
	twoDigitRe     = regexp.MustCompile(`^\d{2}$`)
)

// Normalize converts a raw Date header value to the canonical
// "YYYY-MM-DD HH:MM:SS" form. The second return value is false when the
// input cannot be normalized; that is an expected outcome, not an error.
func Normalize(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}

	// Already-canonical input must round-trip unchanged. The repair rules
	// below would read the date dashes as an offset sign and truncate it,
	// so this check runs before any rewriting.
	if t, err := time.Parse(Layout, s); err == nil {
		return t.Format(Layout), true
	}

	for _, repair := range repairs {
		s = repair(s)
	}

	for _, attempt := range attempts {
		if t, ok := attempt(s); ok {
			return t.Format(Layout), true
		}
	}
	return "", false
}

// repairs is the Stage A rewrite list. Each rule is total and pure; the
// order is load-bearing (zone names must be numeric before the padding
// rules run).
var repairs = []func(string) string{
	collapseDoubledSign,
	truncateAfterOffset,
	dropParenthetical,
	rewriteGMTOffset,
	substituteZoneNames,
	padThreeDigitOffset,
	padSingleDigitHour,
	padSingleDigitMinSec,
	collapseMeridiem,
	abbreviateWeekdays,
	abbreviateMonths,
}

// collapseDoubledSign fixes "--0400" style doubled offset signs.
func collapseDoubledSign(s string) string {
	return strings.ReplaceAll(s, "--", "-")
}

// truncateAfterOffset drops trailing garbage after a 5-character numeric
// offset, e.g. "+0000.395-508222".
func truncateAfterOffset(s string) string {
	pos := strings.LastIndexAny(s, "+-")
	if pos <= 0 || pos+5 >= len(s) {
		return s
	}
	if strings.TrimSpace(s[pos+5:]) == "" {
		return s
	}
	return s[:pos+5]
}

// dropParenthetical removes a spelled-out zone in parentheses, e.g.
// "(Eastern Daylight Time)", and everything after the opening paren.
func dropParenthetical(s string) string {
	if idx := strings.Index(s, "("); idx >= 0 {
		return strings.TrimSpace(s[:idx])
	}
	return s
}

// rewriteGMTOffset turns "GMT-07:00" / "GMT-0700" into a bare "-0700".
func rewriteGMTOffset(s string) string {
	return gmtOffsetRe.ReplaceAllString(s, "$1$2$3")
}

// zoneSubstitutions maps zone spellings to fixed numeric offsets. Long
// forms come first so an abbreviation rewrite cannot clip them; the
// abbreviation entries keep their leading space so substring replacement
// cannot fire inside a word.
var zoneSubstitutions = []struct{ from, to string }{
	{"Eastern Daylight Time", "-0400"},
	{"Eastern Standard Time", "-0500"},
	{"Pacific Daylight Time", "-0700"},
	{"Pacific Standard Time", "-0800"},
	{"Central Daylight Time", "-0500"},
	{"Central Standard Time", "-0600"},
	{"Mountain Daylight Time", "-0600"},
	{"Mountain Standard Time", "-0700"},
	{" UTC", " +0000"},
	{" GMT", " +0000"},
	{" EDT", " -0400"},
	{" EST", " -0500"},
	{" CDT", " -0500"},
	{" CST", " -0600"},
	{" PDT", " -0700"},
	{" PST", " -0800"},
	{" CET", " +0100"},
}

func substituteZoneNames(s string) string {
	for _, sub := range zoneSubstitutions {
		s = strings.ReplaceAll(s, sub.from, sub.to)
	}
	return s
}

// padThreeDigitOffset left-pads a trailing 3-digit signed offset,
// e.g. "-600" -> "-0600".
func padThreeDigitOffset(s string) string {
	return threeDigitTZRe.ReplaceAllString(s, "${1}0$2")
}

// padSingleDigitHour zero-pads the hour in "9:47:11" style time tokens.
func padSingleDigitHour(s string) string {
	return shortHourRe.ReplaceAllString(s, "0$1:$2:$3")
}

// padSingleDigitMinSec zero-pads single-digit minutes and seconds after a
// colon, e.g. "21:9:7" -> "21:09:07".
func padSingleDigitMinSec(s string) string {
	return shortMinSecRe.ReplaceAllString(s, ":0$1")
}

// meridiemSubstitutions removes AM/PM markers glued to a signed offset or
// sandwiched between spaces. No 12-to-24 hour conversion happens here; the
// hour is assumed already resolvable. Inherited simplification, kept.
var meridiemSubstitutions = []struct{ from, to string }{
	{"PM+", " +"},
	{"PM-", " -"},
	{"AM+", " +"},
	{"AM-", " -"},
	{" PM ", " "},
	{" AM ", " "},
}

func collapseMeridiem(s string) string {
	for _, sub := range meridiemSubstitutions {
		s = strings.ReplaceAll(s, sub.from, sub.to)
	}
	return s
}

// weekdaySubstitutions expands full weekday names to the 3-letter forms
// the parse layouts expect. "Thurs," is a common irregular spelling.
var weekdaySubstitutions = []struct{ from, to string }{
	{"Monday", "Mon"},
	{"Tuesday", "Tue"},
	{"Wednesday", "Wed"},
	{"Thursday", "Thu"},
	{"Thurs,", "Thu,"},
	{"Friday", "Fri"},
	{"Saturday", "Sat"},
	{"Sunday", "Sun"},
}

func abbreviateWeekdays(s string) string {
	for _, sub := range weekdaySubstitutions {
		s = strings.ReplaceAll(s, sub.from, sub.to)
	}
	return s
}

// monthSubstitutions expands full month names. May is already 3 letters.
var monthSubstitutions = []struct{ from, to string }{
	{"January", "Jan"},
	{"February", "Feb"},
	{"March", "Mar"},
	{"April", "Apr"},
	{"June", "Jun"},
	{"July", "Jul"},
	{"August", "Aug"},
	{"September", "Sep"},
	{"October", "Oct"},
	{"November", "Nov"},
	{"December", "Dec"},
}

func abbreviateMonths(s string) string {
	for _, sub := range monthSubstitutions {
		s = strings.ReplaceAll(s, sub.from, sub.to)
	}
	return s
}

// attempts is the Stage B parse cascade. Each attempt either parses the
// repaired string completely or passes; the first success wins.
var attempts = []func(string) (time.Time, bool){
	parseRFC2822,
	parseMissingComma,
	parseTwoDigitYear,
	parseCTime,
	parseSlashDate,
	parseCanonical,
}

// rfc2822Layouts covers the internet-mail date-time shapes left after
// repair: weekday and seconds optional, numeric offset, 4-digit year.
// Two-digit years are deliberately absent; parseTwoDigitYear owns that
// case so the >50 pivot applies instead of the RFC obsolete-year rule.
var rfc2822Layouts = []string{
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04 -0700",
	"2 Jan 2006 15:04:05 -0700",
	"2 Jan 2006 15:04 -0700",
}

func parseRFC2822(s string) (time.Time, bool) {
	for _, layout := range rfc2822Layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseMissingComma repairs "Tue 02 Mar ..." by inserting the comma the
// weekday abbreviation is missing, then retries the internet-mail layouts.
func parseMissingComma(s string) (time.Time, bool) {
	first, _, found := strings.Cut(s, " ")
	if !found || len(first) != 3 || strings.HasPrefix(s, first+",") {
		return time.Time{}, false
	}
	return parseRFC2822(strings.Replace(s, first, first+",", 1))
}

// parseTwoDigitYear expands a 2-digit year in the 4th field using the
// pivot rule: values above 50 land in the 1900s, the rest in the 2000s.
func parseTwoDigitYear(s string) (time.Time, bool) {
	parts := strings.Fields(s)
	if len(parts) < 4 || !twoDigitRe.MatchString(parts[3]) {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(parts[3])
	if err != nil {
		return time.Time{}, false
	}
	full := 2000 + year
	if year > 50 {
		full = 1900 + year
	}
	fixed := strings.ReplaceAll(s, " "+parts[3]+" ", fmt.Sprintf(" %d ", full))
	return parseRFC2822(fixed)
}

// parseCTime handles the C-library textual timestamp, e.g.
// "Thu Jul 20 11:39:51 2006". No offset is present and none is assumed.
func parseCTime(s string) (time.Time, bool) {
	parts := strings.Fields(s)
	if len(parts) != 5 {
		return time.Time{}, false
	}
	t, err := time.Parse(time.ANSIC, strings.Join(parts, " "))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// slashLayouts handles "7/19/2005 8:11:52 AM" style dates, most to least
// specific; the date-only form defaults to midnight.
var slashLayouts = []string{
	"1/2/2006 3:04:05 PM",
	"1/2/2006 15:04:05",
	"1/2/2006",
}

func parseSlashDate(s string) (time.Time, bool) {
	if !strings.Contains(s, "/") {
		return time.Time{}, false
	}
	for _, layout := range slashLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseCanonical accepts the engine's own output format, making Normalize
// idempotent for values that survive the repair rules intact.
func parseCanonical(s string) (time.Time, bool) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
