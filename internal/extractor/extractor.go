package extractor

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"interviewd/internal/domain"
)

// Extractor pulls candidate contact fields out of a resume. Fields it cannot
// find are left empty; the profile collection step asks for those.
type Extractor interface {
	Extract(ctx context.Context, path string) (domain.ProfileFields, error)
}

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`\+?[0-9][0-9\-\s().]{6,}[0-9]`)
)

// TextExtractor scans a plain-text resume line by line. The candidate name
// is taken from the first line that is not contact info.
type TextExtractor struct {
	// MaxLines bounds how far into the resume to look (default: 40).
	MaxLines int
}

var _ Extractor = (*TextExtractor)(nil)

// NewTextExtractor creates a plain-text resume extractor
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{MaxLines: 40}
}

// Extract reads the resume at path and returns whatever fields it found.
func (e *TextExtractor) Extract(_ context.Context, path string) (domain.ProfileFields, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.ProfileFields{}, fmt.Errorf("open resume: %w", err)
	}
	defer f.Close()

	maxLines := e.MaxLines
	if maxLines <= 0 {
		maxLines = 40
	}

	var fields domain.ProfileFields
	fields.ResumePath = path

	scanner := bufio.NewScanner(f)
	for line := 0; line < maxLines && scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		if fields.Email == "" {
			fields.Email = emailPattern.FindString(text)
		}
		if fields.Phone == "" {
			fields.Phone = strings.TrimSpace(phonePattern.FindString(text))
		}
		if fields.Name == "" && looksLikeName(text) {
			fields.Name = text
		}
	}
	if err := scanner.Err(); err != nil {
		return domain.ProfileFields{}, fmt.Errorf("read resume: %w", err)
	}

	return fields, nil
}

// looksLikeName accepts a short line of letters without contact markers.
func looksLikeName(line string) bool {
	if len(line) > 60 || strings.ContainsAny(line, "@:/") {
		return false
	}
	if emailPattern.MatchString(line) || phonePattern.MatchString(line) {
		return false
	}
	words := strings.Fields(line)
	if len(words) < 1 || len(words) > 4 {
		return false
	}
	for _, word := range words {
		for _, r := range word {
			if !isNameRune(r) {
				return false
			}
		}
	}
	return true
}

func isNameRune(r rune) bool {
	return r == '.' || r == '\'' || r == '-' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r > 127
}
