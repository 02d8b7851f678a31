package scanner

import (
	"encoding/base64"
	"fmt"
	"strings"
	"unicode"

	"github.com/kursadbilgin/applytrack/internal/mailbox"
)

type (
	Header = mailbox.Header
	Part   = mailbox.Part
)

const mimeTextPlain = "text/plain"

// ExtractBody picks the raw body data of a payload: inline data first, then
// the first text/plain part carrying data, searched depth-first. It returns ""
// when neither exists.
func ExtractBody(payload Part) string {
	if payload.Data != "" {
		return payload.Data
	}
	return firstPlainText(payload.Parts)
}

func firstPlainText(parts []Part) string {
	for _, p := range parts {
		if strings.EqualFold(p.MimeType, mimeTextPlain) && p.Data != "" {
			return p.Data
		}
		if len(p.Parts) > 0 {
			if data := firstPlainText(p.Parts); data != "" {
				return data
			}
		}
	}
	return ""
}

// DecodeBody decodes web-safe base64 with optional padding. Invalid UTF-8
// sequences in the decoded text are replaced rather than rejected.
func DecodeBody(data string) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r):
			return -1
		case r == '-':
			return '+'
		case r == '_':
			return '/'
		}
		return r
	}, data)
	cleaned = strings.TrimRight(cleaned, "=")
	if cleaned == "" {
		return "", nil
	}

	raw, err := base64.RawStdEncoding.DecodeString(cleaned)
	if err != nil {
		return "", fmt.Errorf("decode body: %w", err)
	}
	return strings.ToValidUTF8(string(raw), "�"), nil
}
