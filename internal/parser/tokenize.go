package parser

import (
	"regexp"
	"strings"
)

// RawBlock is a contiguous slice of statement text believed to describe one
// transaction: the text before the operation stamp, the stamp itself, and
// the text after it up to the next stamp.
type RawBlock struct {
	// Lead is the text preceding the operation stamp. In the Yandex layout
	// this is the description; other grammars may keep it empty.
	Lead string
	// OpDate and OpTime are the captures of the operation stamp.
	OpDate string
	OpTime string
	// Tail is the text between this stamp and the next one.
	Tail string
	// Raw is the full original slice, kept for diagnostics.
	Raw string
}

// Operation stamps. The strict form ("01.07.2025 в 08:16") is what the bank
// prints; the loose form additionally accepts text extractors that drop the
// "в" between date and time.
var (
	opStampStrict = regexp.MustCompile(`(\d{2}\.\d{2}\.\d{4})\s+в\s+(\d{2}:\d{2})`)
	opStampLoose  = regexp.MustCompile(`(\d{2}\.\d{2}\.\d{4})\s+(?:в\s+)?(\d{2}:\d{2})`)
)

// tokenize strips boilerplate lines from the statement text and splits the
// remainder into raw transaction blocks anchored on the operation stamp.
// One pass, order preserved from the source document.
func tokenize(text string, anchor *regexp.Regexp, boilerplate []*regexp.Regexp) []RawBlock {
	for _, re := range boilerplate {
		text = re.ReplaceAllString(text, "")
	}

	matches := anchor.FindAllStringSubmatchIndex(text, -1)
	blocks := make([]RawBlock, 0, len(matches))

	for i, m := range matches {
		leadStart := 0
		if i > 0 {
			leadStart = matches[i-1][1]
		}
		tailEnd := len(text)
		if i+1 < len(matches) {
			tailEnd = matches[i+1][0]
		}

		blocks = append(blocks, RawBlock{
			Lead:   strings.TrimSpace(text[leadStart:m[0]]),
			OpDate: text[m[2]:m[3]],
			OpTime: text[m[4]:m[5]],
			Tail:   text[m[1]:tailEnd],
			Raw:    strings.TrimSpace(text[leadStart:tailEnd]),
		})
	}

	return blocks
}
