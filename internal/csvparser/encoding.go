package csvparser

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ginjaninja78/pnl-workbook/internal/types"
)

// =============================================================================
// ENCODING FALLBACKS
// =============================================================================
// Extracts come from a Thai reporting system that exports TIS-620 by
// default; some sites re-save them as Windows-874 or UTF-8. Each candidate
// is tried in order and the first that decodes the whole input cleanly
// wins.

// Encoding names.
const (
	EncodingTIS620  = "tis-620"
	EncodingCP874   = "cp874"
	EncodingUTF8SIG = "utf-8-sig"
	EncodingUTF8    = "utf-8"
)

// DefaultEncodings is the fallback order.
var DefaultEncodings = []string{EncodingTIS620, EncodingCP874, EncodingUTF8SIG, EncodingUTF8}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Candidates returns the fallback order with preferred moved to the front.
// An unknown preferred name is ignored.
func Candidates(preferred string) []string {
	preferred = NormalizeEncoding(preferred)
	out := make([]string, 0, len(DefaultEncodings))
	for _, e := range DefaultEncodings {
		if e == preferred {
			out = append(out, e)
		}
	}
	for _, e := range DefaultEncodings {
		if e != preferred {
			out = append(out, e)
		}
	}
	return out
}

// NormalizeEncoding maps common spellings onto the canonical names.
func NormalizeEncoding(name string) string {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), "_", "-")) {
	case "tis-620", "tis620":
		return EncodingTIS620
	case "cp874", "windows-874", "windows874":
		return EncodingCP874
	case "utf-8-sig", "utf8-sig":
		return EncodingUTF8SIG
	case "utf-8", "utf8":
		return EncodingUTF8
	}
	return ""
}

// Decode decodes raw with the first candidate that succeeds.
//
// RETURNS:
//   - The decoded text.
//   - The name of the encoding that decoded it.
//   - An error wrapping types.ErrDecoding if no candidate succeeds.
func Decode(raw []byte, preferred string) (string, string, error) {
	for _, enc := range Candidates(preferred) {
		if text, ok := decodeAs(raw, enc); ok {
			return text, enc, nil
		}
	}
	return "", "", fmt.Errorf("tried %s: %w", strings.Join(Candidates(preferred), ", "), types.ErrDecoding)
}

// decodeAs decodes raw as enc. A leading byte-order mark rules out the
// single-byte code pages: its bytes are valid Thai letters there.
func decodeAs(raw []byte, enc string) (string, bool) {
	switch enc {
	case EncodingTIS620:
		if hasBOM(raw) {
			return "", false
		}
		for _, b := range raw {
			if !tis620Defined(b) {
				return "", false
			}
		}
		return decodeCharmap(raw)

	case EncodingCP874:
		if hasBOM(raw) {
			return "", false
		}
		return decodeCharmap(raw)

	case EncodingUTF8SIG:
		if !utf8.Valid(raw) {
			return "", false
		}
		out, _, err := transform.Bytes(unicode.UTF8BOM.NewDecoder(), raw)
		if err != nil {
			return "", false
		}
		return string(out), true

	case EncodingUTF8:
		if !utf8.Valid(raw) {
			return "", false
		}
		return string(raw), true
	}
	return "", false
}

// decodeCharmap decodes with Windows-874, the superset of TIS-620. Bytes
// the code page leaves undefined decode to U+FFFD and fail the attempt.
func decodeCharmap(raw []byte) (string, bool) {
	out, _, err := transform.Bytes(charmap.Windows874.NewDecoder(), raw)
	if err != nil || bytes.ContainsRune(out, utf8.RuneError) {
		return "", false
	}
	return string(out), true
}

// tis620Defined reports whether b is assigned in TIS-620: ASCII, Thai
// letters 0xA1-0xDA and 0xDF-0xFB. The C1 range 0x80-0x9F is rejected, so
// UTF-8 Thai text (whose continuation bytes fall there) never passes as
// TIS-620.
func tis620Defined(b byte) bool {
	switch {
	case b < 0x80:
		return true
	case b >= 0xA1 && b <= 0xDA:
		return true
	case b >= 0xDF && b <= 0xFB:
		return true
	}
	return false
}

// EncodeTIS620 encodes text as TIS-620. It is the inverse of a TIS-620
// decode and is used to produce fixtures.
func EncodeTIS620(text string) ([]byte, error) {
	out, _, err := transform.Bytes(charmap.Windows874.NewEncoder(), []byte(text))
	if err != nil {
		return nil, fmt.Errorf("failed to encode TIS-620: %w", err)
	}
	return out, nil
}

func hasBOM(raw []byte) bool {
	return bytes.HasPrefix(raw, utf8BOM)
}
