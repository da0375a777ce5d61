package align

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"phrasecut/internal/services"
)

// Montreal Forced Aligner writes TextGrid files, often UTF-16 encoded. The
// word tier carries one interval per aligned word; empty intervals and "spn"
// markers denote silence or untranscribed speech and are skipped.

var (
	wordTierPattern = regexp.MustCompile(`(?s)name\s*=\s*"words".*?(?:item\s*\[2\]|$)`)
	intervalPattern = regexp.MustCompile(`xmin\s*=\s*([\d.]+)\s+xmax\s*=\s*([\d.]+)\s+text\s*=\s*"([^"]*)"`)
)

// ParseTextGrid reads an MFA TextGrid file and returns its word-level
// alignment. Encoding is sniffed (UTF-16 with BOM, then UTF-8) before parsing.
func ParseTextGrid(path string) ([]Word, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrNotFound, "align", "read textgrid", path, err)
	}
	content, err := decodeTextGrid(data)
	if err != nil {
		return nil, err
	}
	return parseTextGridContent(content)
}

func decodeTextGrid(data []byte) (string, error) {
	// UTF-16 BOM takes precedence; MFA commonly writes UTF-16.
	if len(data) >= 2 && ((data[0] == 0xFF && data[1] == 0xFE) || (data[0] == 0xFE && data[1] == 0xFF)) {
		decoder := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		decoded, _, err := transform.Bytes(decoder, data)
		if err != nil {
			return "", services.Wrap(services.ErrAlignmentCorrupt, "align", "decode textgrid", "utf-16 decode failed", err)
		}
		data = decoded
	}
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	content := string(data)
	if !strings.Contains(content, `File type = "ooTextFile"`) {
		return "", services.Wrap(services.ErrAlignmentCorrupt, "align", "decode textgrid", "missing ooTextFile header", nil)
	}
	return content, nil
}

func parseTextGridContent(content string) ([]Word, error) {
	tier := wordTierPattern.FindString(content)
	if tier == "" {
		return nil, services.Wrap(services.ErrAlignmentCorrupt, "align", "parse textgrid", "word tier not found", nil)
	}

	matches := intervalPattern.FindAllStringSubmatch(tier, -1)
	words := make([]Word, 0, len(matches))
	for _, m := range matches {
		text := strings.TrimSpace(m[3])
		if text == "" || text == "spn" {
			continue
		}
		start, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return nil, services.Wrap(services.ErrAlignmentCorrupt, "align", "parse textgrid", fmt.Sprintf("bad xmin %q", m[1]), err)
		}
		end, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			return nil, services.Wrap(services.ErrAlignmentCorrupt, "align", "parse textgrid", fmt.Sprintf("bad xmax %q", m[2]), err)
		}
		words = append(words, Word{Text: text, Start: start, End: end})
	}
	return words, nil
}
