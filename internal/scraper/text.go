package scraper

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var namedEntities = map[string]string{
	"&amp;":    "&",
	"&lt;":     "<",
	"&gt;":     ">",
	"&quot;":   `"`,
	"&#39;":    "'",
	"&apos;":   "'",
	"&nbsp;":   " ",
	"&ndash;":  "–",
	"&mdash;":  "—",
	"&lsquo;":  "‘",
	"&rsquo;":  "’",
	"&ldquo;":  "“",
	"&rdquo;":  "”",
	"&hellip;": "…",
	"&trade;":  "™",
	"&reg;":    "®",
	"&copy;":   "©",
}

var entityPattern = regexp.MustCompile(`&(?:[a-zA-Z]+|#\d{1,7}|#[xX][0-9a-fA-F]{1,6});`)

// DecodeEntities replaces the common named HTML entities and any numeric
// entity with the characters they stand for. Decoding is a single pass, so
// "&amp;#39;" becomes "&#39;". Unknown named entities are left as-is.
func DecodeEntities(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	return entityPattern.ReplaceAllStringFunc(s, decodeEntity)
}

func decodeEntity(ent string) string {
	if r, ok := namedEntities[ent]; ok {
		return r
	}
	if ent[1] != '#' {
		return ent
	}

	digits, base := ent[2:len(ent)-1], 10
	if digits[0] == 'x' || digits[0] == 'X' {
		digits, base = digits[1:], 16
	}
	n, err := strconv.ParseInt(digits, base, 32)
	if err != nil || !utf8.ValidRune(rune(n)) {
		return ent
	}
	return string(rune(n))
}

var (
	priceJunk      = regexp.MustCompile(`[^\d.,]`)
	decimalComma   = regexp.MustCompile(`,(\d{1,2})$`)
	firstNumberRun = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// ParsePrice turns a scraped price string such as "$1,234.56" into a number.
// A trailing comma group of one or two digits is a decimal comma ("12,5",
// "12,99" or "1.234,56"); other commas are thousands separators.
func ParsePrice(s *string) *float64 {
	if s == nil {
		return nil
	}

	cleaned := priceJunk.ReplaceAllString(*s, "")
	if decimalComma.MatchString(cleaned) {
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = decimalComma.ReplaceAllString(cleaned, ".$1")
	}
	cleaned = strings.ReplaceAll(cleaned, ",", "")

	run := firstNumberRun.FindString(cleaned)
	if run == "" {
		return nil
	}

	v, err := strconv.ParseFloat(run, 64)
	if err != nil || math.IsNaN(v) {
		return nil
	}
	return &v
}

// clean trims and decodes an extracted field; empty results become nil.
func clean(s string) *string {
	s = strings.TrimSpace(DecodeEntities(s))
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return nil
	}
	return &s
}
