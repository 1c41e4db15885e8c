package ingest

import (
	"bytes"
	"fmt"
	"log"
	"strings"
	"unicode"
	"unicode/utf8"

	"datastory/domain/table"
	apperrors "datastory/internal/errors"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// EncodingConfig controls candidate selection and plausibility checks
type EncodingConfig struct {
	// MinPrintableRatio is the minimum fraction of printable runes a
	// decoded candidate must exhibit to be accepted.
	MinPrintableRatio float64 `json:"min_printable_ratio"`
}

// DefaultEncodingConfig returns sensible defaults
func DefaultEncodingConfig() EncodingConfig {
	return EncodingConfig{MinPrintableRatio: 0.85}
}

type encodingCandidate struct {
	name    table.Encoding
	decoder *encoding.Decoder // nil means native UTF-8 validation
}

// candidateList is the fixed detection order: UTF-8 first, then the two
// Korean encodings, then a byte-level Latin-1 fallback that accepts any
// byte sequence and relies on the printable-ratio check alone.
//
// x/text ships a single EUC-KR table covering the Windows-949 superset,
// so the cp949 and euc-kr candidates share a decoder; the distinction is
// kept so the reported encoding matches what the caller asked about.
func candidateList() []encodingCandidate {
	return []encodingCandidate{
		{name: table.EncodingUTF8, decoder: nil},
		{name: table.EncodingCP949, decoder: korean.EUCKR.NewDecoder()},
		{name: table.EncodingEUCKR, decoder: korean.EUCKR.NewDecoder()},
		{name: table.EncodingLatin1, decoder: charmap.ISO8859_1.NewDecoder()},
	}
}

// DetectEncoding decodes raw with the first candidate encoding that
// produces plausible text. Detection is pure: the same bytes always
// yield the same result.
func DetectEncoding(raw []byte, config EncodingConfig) (string, table.Encoding, error) {
	raw = stripBOM(raw)

	var attempted []string
	for _, cand := range candidateList() {
		attempted = append(attempted, string(cand.name))

		text, ok := tryDecode(raw, cand)
		if !ok {
			continue
		}
		if !plausibleText(text, config.MinPrintableRatio) {
			continue
		}
		log.Printf("[EncodingDetector] Detected encoding %s (%d bytes in, %d chars out)",
			cand.name, len(raw), utf8.RuneCountInString(text))
		return text, cand.name, nil
	}

	return "", "", apperrors.EncodingDetection(
		fmt.Sprintf("no candidate encoding decodes the input (attempted: %s)", strings.Join(attempted, ", ")),
		strings.Join(attempted, ","),
	)
}

func tryDecode(raw []byte, cand encodingCandidate) (string, bool) {
	if cand.decoder == nil {
		if !utf8.Valid(raw) {
			return "", false
		}
		return string(raw), true
	}

	decoded, _, err := transform.Bytes(cand.decoder, raw)
	if err != nil {
		return "", false
	}
	// The x/text decoders substitute U+FFFD for undecodable byte runs
	// instead of erroring; treat any substitution as a failed candidate.
	if bytes.ContainsRune(decoded, utf8.RuneError) {
		return "", false
	}
	return string(decoded), true
}

// plausibleText checks the printable-to-control character ratio.
// Tabs, newlines and carriage returns count as printable since they are
// structural in delimited files.
func plausibleText(text string, minRatio float64) bool {
	if text == "" {
		return true
	}
	total, printable := 0, 0
	for _, r := range text {
		total++
		if r == '\t' || r == '\n' || r == '\r' {
			printable++
			continue
		}
		if unicode.IsPrint(r) {
			printable++
		}
	}
	return float64(printable)/float64(total) >= minRatio
}

func stripBOM(raw []byte) []byte {
	return bytes.TrimPrefix(raw, []byte{0xEF, 0xBB, 0xBF})
}
