// Package lawlib is a small, deterministic, concurrency-safe in-memory
// library of statutory provisions used to ground legal answers.
//
// The source is Markdown: a level-one heading names the Act and every
// following paragraph is one provision of it. Retrieval scores each provision
// by Jaccard similarity between the query token set and the provision token
// set: score = |Q ∩ P| / |Q ∪ P|. The library is read-only after construction.
package lawlib

import (
	"bytes"
	_ "embed"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

//go:embed law_library.md
var builtin []byte

// Provision is one paragraph of an Act.
type Provision struct {
	Act  string
	Text string
}

// String renders the provision as it is cited in prompts.
func (p Provision) String() string {
	if p.Act == "" {
		return p.Text
	}
	return p.Act + ": " + p.Text
}

// Match is a ranked provision with its similarity score.
type Match struct {
	Provision
	Score float64
}

// Library is implemented by all provision indices.
type Library interface {
	TopK(query string, k int) []Match
	Len() int
}

type Option func(*config)

type config struct {
	minParagraphRunes int
	stopwords         map[string]struct{}
}

func defaultConfig() config {
	c := config{minParagraphRunes: 40}
	WithStopwords(DefaultStopwords)(&c)
	return c
}

// DefaultStopwords removes connective words that would otherwise dominate the
// overlap between a citizen's question and statutory text.
var DefaultStopwords = []string{
	"a", "an", "and", "any", "are", "as", "at", "be", "by", "can", "do", "for", "from",
	"has", "have", "how", "i", "if", "in", "is", "it", "my", "of", "on", "or", "shall",
	"that", "the", "to", "under", "was", "what", "who", "whoever", "with", "within",
}

func WithMinParagraphRunes(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.minParagraphRunes = n
		}
	}
}

// WithStopwords replaces the stop-word list; an empty list disables filtering.
func WithStopwords(words []string) Option {
	return func(c *config) {
		m := make(map[string]struct{}, len(words))
		for _, w := range words {
			w = strings.ToLower(strings.TrimSpace(w))
			if w != "" {
				m[w] = struct{}{}
			}
		}
		if len(m) == 0 {
			c.stopwords = nil
			return
		}
		c.stopwords = m
	}
}

type entry struct {
	prov   Provision
	tokens map[string]struct{}
}

type library struct {
	cfg     config
	entries []entry
}

// Load reads the Markdown library at path, or the built-in library when path
// is empty.
func Load(path string, opts ...Option) (Library, error) {
	if path == "" {
		return NewFromReader(bytes.NewReader(builtin), opts...)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return &library{cfg: defaultConfig()}, err
	}
	return NewFromReader(bytes.NewReader(b), opts...)
}

// NewFromReader builds a Library from Markdown provided by r.
func NewFromReader(r io.Reader, opts ...Option) (Library, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	all, err := io.ReadAll(r)
	if err != nil {
		return &library{cfg: cfg}, err
	}
	return build(parseMarkdown(all), cfg), nil
}

// NewFromProvisions builds a Library directly from provisions.
func NewFromProvisions(provs []Provision, opts ...Option) Library {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return build(provs, cfg)
}

func build(provs []Provision, cfg config) *library {
	entries := make([]entry, 0, len(provs))
	for _, p := range provs {
		p.Text = strings.TrimSpace(normalizeWhitespace(p.Text))
		if p.Text == "" {
			continue
		}
		if cfg.minParagraphRunes > 0 && utf8.RuneCountInString(p.Text) < cfg.minParagraphRunes {
			continue
		}
		toks := tokenize(p.Act+" "+p.Text, cfg.stopwords)
		if len(toks) == 0 {
			continue
		}
		entries = append(entries, entry{prov: p, tokens: toks})
	}
	return &library{cfg: cfg, entries: entries}
}

func (l *library) Len() int { return len(l.entries) }

// TopK returns up to k best-matching provisions by Jaccard similarity.
// Ties are broken by shorter text, then lexically, so results are stable.
func (l *library) TopK(q string, k int) []Match {
	if len(l.entries) == 0 || strings.TrimSpace(q) == "" {
		return nil
	}
	if k <= 0 {
		k = 3
	}
	qTokens := tokenize(q, l.cfg.stopwords)
	if len(qTokens) == 0 {
		return nil
	}

	type scored struct {
		m        Match
		lenRunes int
	}
	buf := make([]scored, 0, len(l.entries))
	for _, e := range l.entries {
		over := overlap(qTokens, e.tokens)
		if over == 0 {
			continue
		}
		union := float64(len(qTokens) + len(e.tokens) - over)
		buf = append(buf, scored{
			m:        Match{Provision: e.prov, Score: float64(over) / union},
			lenRunes: utf8.RuneCountInString(e.prov.Text),
		})
	}
	if len(buf) == 0 {
		return nil
	}

	sort.SliceStable(buf, func(a, b int) bool {
		if buf[a].m.Score != buf[b].m.Score {
			return buf[a].m.Score > buf[b].m.Score
		}
		if buf[a].lenRunes != buf[b].lenRunes {
			return buf[a].lenRunes < buf[b].lenRunes
		}
		return buf[a].m.Text < buf[b].m.Text
	})

	if k > len(buf) {
		k = len(buf)
	}
	out := make([]Match, k)
	for i := 0; i < k; i++ {
		out[i] = buf[i].m
	}
	return out
}

// Cite returns the rendered provisions among the top k whose score reaches
// threshold. A nil library yields nothing.
func Cite(l Library, query string, k int, threshold float64) []string {
	if l == nil {
		return nil
	}
	var out []string
	for _, m := range l.TopK(query, k) {
		if m.Score < threshold {
			continue
		}
		out = append(out, m.Provision.String())
	}
	return out
}

var wordRE = regexp.MustCompile(`[\p{L}\p{N}]+`)

func tokenize(s string, stop map[string]struct{}) map[string]struct{} {
	words := wordRE.FindAllString(strings.ToLower(s), -1)
	if len(words) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		if _, skip := stop[w]; skip {
			continue
		}
		out[w] = struct{}{}
	}
	return out
}

func overlap(a, b map[string]struct{}) int {
	if len(a) > len(b) {
		a, b = b, a
	}
	n := 0
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}

func normalizeWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevSpace := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\r' || r == '\n' {
			if !prevSpace {
				b.WriteByte(' ')
				prevSpace = true
			}
			continue
		}
		prevSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

var paraSplitRE = regexp.MustCompile(`\n\s*\n`)

// parseMarkdown splits on blank lines; "# " headings set the Act for the
// paragraphs that follow and deeper headings are ignored.
func parseMarkdown(all []byte) []Provision {
	chunks := paraSplitRE.Split(strings.ReplaceAll(string(all), "\r\n", "\n"), -1)
	out := make([]Provision, 0, len(chunks))
	act := ""
	for _, c := range chunks {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if strings.HasPrefix(c, "# ") {
			act = strings.TrimSpace(strings.TrimPrefix(c, "# "))
			continue
		}
		if strings.HasPrefix(c, "#") {
			continue
		}
		out = append(out, Provision{Act: act, Text: c})
	}
	return out
}
