package deck

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrNoSlides is returned when a deck file contains no slides.
var ErrNoSlides = errors.New("deck has no slides")

// Separator is the line that splits two slides.
const Separator = "---"

// Meta is the optional YAML front matter of a deck.
type Meta struct {
	Title    string `yaml:"title"`
	Author   string `yaml:"author"`
	AutoPlay string `yaml:"autoplay"`
	Start    int    `yaml:"start"`
	Theme    string `yaml:"theme"`
}

// AutoPlayInterval parses the autoplay field. Zero means not set.
func (m Meta) AutoPlayInterval() (time.Duration, error) {
	if m.AutoPlay == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(m.AutoPlay)
	if err != nil {
		return 0, fmt.Errorf("invalid autoplay %q: %w", m.AutoPlay, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("autoplay must be positive, got %s", d)
	}
	return d, nil
}

// Slide is one unit of the presentation, numbered from 1.
type Slide struct {
	Number int
	Title  string
	Body   string
	Notes  string
}

// Deck is a parsed presentation.
type Deck struct {
	Path   string
	Title  string
	Author string
	Meta   Meta
	Slides []Slide
}

// Len returns the number of slides.
func (d *Deck) Len() int {
	return len(d.Slides)
}

// Slide returns slide n (1-based) and whether it exists.
func (d *Deck) Slide(n int) (Slide, bool) {
	if n < 1 || n > len(d.Slides) {
		return Slide{}, false
	}
	return d.Slides[n-1], true
}

var notesPattern = regexp.MustCompile(`(?s)<!--\s*notes:(.*?)-->`)

// Load reads and parses a deck file.
func Load(path string) (*Deck, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read deck: %w", err)
	}
	d, err := Parse(filepath.Base(path), data)
	if err != nil {
		return nil, fmt.Errorf("parse deck %s: %w", path, err)
	}
	d.Path = path
	return d, nil
}

// Parse splits markdown into slides. name is used as the title when
// neither the front matter nor the first slide provides one.
func Parse(name string, data []byte) (*Deck, error) {
	text := string(bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n")))
	lines := strings.Split(text, "\n")

	var meta Meta
	lines, err := splitFrontMatter(lines, &meta)
	if err != nil {
		return nil, err
	}

	d := &Deck{Meta: meta, Author: meta.Author}
	for _, chunk := range splitSlides(lines) {
		notes := extractNotes(chunk)
		body := strings.TrimSpace(notesPattern.ReplaceAllString(chunk, ""))
		if body == "" {
			continue
		}
		n := len(d.Slides) + 1
		title := headingTitle(body)
		if title == "" {
			title = fmt.Sprintf("Slide %d", n)
		}
		d.Slides = append(d.Slides, Slide{Number: n, Title: title, Body: body, Notes: notes})
	}

	if len(d.Slides) == 0 {
		return nil, ErrNoSlides
	}

	switch {
	case meta.Title != "":
		d.Title = meta.Title
	case headingTitle(d.Slides[0].Body) != "":
		d.Title = d.Slides[0].Title
	default:
		d.Title = strings.TrimSuffix(name, filepath.Ext(name))
	}
	return d, nil
}

// metaKeys are the front matter keys Meta understands.
var metaKeys = map[string]bool{
	"title":    true,
	"author":   true,
	"autoplay": true,
	"start":    true,
	"theme":    true,
}

// splitFrontMatter decodes a leading ---/--- YAML block into meta and
// returns the remaining lines. The block only counts as front matter when
// it is a YAML mapping with at least one key of Meta; otherwise it stays
// slide content.
func splitFrontMatter(lines []string, meta *Meta) ([]string, error) {
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != Separator {
		return lines, nil
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) != Separator {
			continue
		}
		block := strings.Join(lines[1:i], "\n")
		var node yaml.Node
		if err := yaml.Unmarshal([]byte(block), &node); err != nil {
			return lines, nil
		}
		if len(node.Content) == 0 || !hasMetaKey(node.Content[0]) {
			return lines, nil
		}
		if err := node.Decode(meta); err != nil {
			return nil, fmt.Errorf("front matter: %w", err)
		}
		return lines[i+1:], nil
	}
	return lines, nil
}

func hasMetaKey(n *yaml.Node) bool {
	if n.Kind != yaml.MappingNode {
		return false
	}
	for i := 0; i < len(n.Content); i += 2 {
		if metaKeys[n.Content[i].Value] {
			return true
		}
	}
	return false
}

// splitSlides cuts lines at separator lines outside fenced code blocks.
func splitSlides(lines []string) []string {
	var chunks []string
	var cur []string
	inFence := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
		}
		if !inFence && trimmed == Separator {
			chunks = append(chunks, strings.Join(cur, "\n"))
			cur = nil
			continue
		}
		cur = append(cur, line)
	}
	return append(chunks, strings.Join(cur, "\n"))
}

func extractNotes(chunk string) string {
	matches := notesPattern.FindAllStringSubmatch(chunk, -1)
	if len(matches) == 0 {
		return ""
	}
	parts := make([]string, 0, len(matches))
	for _, m := range matches {
		if s := strings.TrimSpace(m[1]); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}

var (
	atxHeading    = regexp.MustCompile(`^#{1,6}(\s+(.*?))?(\s+#+)?\s*$`)
	setextUnderln = regexp.MustCompile(`^(=+|-+)\s*$`)
)

// headingTitle returns the text of the first ATX or setext heading
// outside fenced code.
func headingTitle(body string) string {
	inFence := false
	prev := ""
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			prev = ""
			continue
		}
		if inFence {
			continue
		}
		if m := atxHeading.FindStringSubmatch(trimmed); m != nil {
			if title := strings.TrimSpace(m[2]); title != "" {
				return title
			}
		} else if prev != "" && setextUnderln.MatchString(trimmed) {
			return prev
		}
		prev = trimmed
	}
	return ""
}
