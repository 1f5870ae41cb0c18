// Package content implements the blog's lightweight markup: slugs for post
// titles and the block/span formatter used by both the public post page and
// the admin preview.
//
// The markup is deliberately small. Blocks are separated by blank lines, a
// block wrapped entirely in ** is a heading, and ** pairs inside a paragraph
// mark bold spans. Malformed markup degrades to plain text.
package content

import "strings"

const boldDelim = "**"

// BlockKind distinguishes headings from paragraphs.
type BlockKind int

const (
	Paragraph BlockKind = iota
	Heading
)

func (k BlockKind) String() string {
	if k == Heading {
		return "heading"
	}
	return "paragraph"
}

// Span is a contiguous run of text inside a block.
type Span struct {
	Text string `json:"text"`
	Bold bool   `json:"bold,omitempty"`
}

// Block is a paragraph- or heading-level unit of content.
type Block struct {
	Kind  BlockKind `json:"kind"`
	Spans []Span    `json:"spans"`
}

// Text returns the block's text with all markup removed.
func (b Block) Text() string {
	var sb strings.Builder
	for _, s := range b.Spans {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// Markup returns the canonical source form of the block.
func (b Block) Markup() string {
	if b.Kind == Heading {
		return boldDelim + b.Text() + boldDelim
	}
	var sb strings.Builder
	for _, s := range b.Spans {
		if s.Bold {
			sb.WriteString(boldDelim + s.Text + boldDelim)
			continue
		}
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// Markup joins blocks back into source text, one blank line between blocks.
func Markup(blocks []Block) string {
	parts := make([]string, len(blocks))
	for i, b := range blocks {
		parts[i] = b.Markup()
	}
	return strings.Join(parts, "\n\n")
}

// Format splits raw post content into blocks.
func Format(raw string) []Block {
	var blocks []Block
	for _, chunk := range splitBlocks(raw) {
		if inner, ok := headingText(chunk); ok {
			blocks = append(blocks, Block{Kind: Heading, Spans: []Span{{Text: inner}}})
			continue
		}
		blocks = append(blocks, Block{Kind: Paragraph, Spans: scanSpans(chunk)})
	}
	return blocks
}

// splitBlocks groups consecutive non-blank lines. Whitespace-only lines count
// as blank.
func splitBlocks(raw string) []string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	var (
		chunks  []string
		current []string
	)
	flush := func() {
		if len(current) > 0 {
			chunks = append(chunks, strings.Join(current, "\n"))
			current = current[:0]
		}
	}
	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()
	return chunks
}

func headingText(chunk string) (string, bool) {
	if len(chunk) <= 2*len(boldDelim) {
		return "", false
	}
	if !strings.HasPrefix(chunk, boldDelim) || !strings.HasSuffix(chunk, boldDelim) {
		return "", false
	}
	inner := chunk[len(boldDelim) : len(chunk)-len(boldDelim)]
	if strings.Contains(inner, boldDelim) {
		return "", false
	}
	return inner, true
}

// scanSpans walks s looking for **...** pairs. The first closing delimiter
// ends a span; an empty pair or an unterminated opener is kept as text.
func scanSpans(s string) []Span {
	var (
		spans []Span
		plain strings.Builder
	)
	flushPlain := func() {
		if plain.Len() > 0 {
			spans = append(spans, Span{Text: plain.String()})
			plain.Reset()
		}
	}
	for len(s) > 0 {
		open := strings.Index(s, boldDelim)
		if open < 0 {
			plain.WriteString(s)
			break
		}
		plain.WriteString(s[:open])
		rest := s[open+len(boldDelim):]
		end := strings.Index(rest, boldDelim)
		switch {
		case end < 0:
			plain.WriteString(s[open:])
			s = ""
		case end == 0:
			plain.WriteString(boldDelim)
			s = rest
		default:
			flushPlain()
			spans = append(spans, Span{Text: rest[:end], Bold: true})
			s = rest[end+len(boldDelim):]
		}
	}
	flushPlain()
	return spans
}
