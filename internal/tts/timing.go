// Package tts proxies streaming speech synthesis and derives word and emoji
// timings from the character alignment that comes with each audio chunk.
package tts

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Alignment is the per-character timing attached to a chunk.
type Alignment struct {
	Characters []string  `json:"characters"`
	Starts     []float64 `json:"character_start_times_seconds"`
	Ends       []float64 `json:"character_end_times_seconds"`
}

func (a *Alignment) usable() bool {
	return a != nil && len(a.Characters) > 0 && len(a.Starts) > 0 && len(a.Ends) > 0
}

// Chunk is one line of the upstream stream.
type Chunk struct {
	Audio               string     `json:"audio_base64"`
	Alignment           *Alignment `json:"alignment,omitempty"`
	NormalizedAlignment *Alignment `json:"normalized_alignment,omitempty"`
}

// WordTiming places a spoken word in the audio.
type WordTiming struct {
	Word       string `json:"word"`
	StartMS    int    `json:"start_ms"`
	DurationMS int    `json:"duration_ms"`
}

// EmojiEvent marks when an emoji is reached.
type EmojiEvent struct {
	Emoji   string `json:"emoji"`
	StartMS int    `json:"start_ms"`
}

func isDelimiter(ch string) bool {
	return strings.TrimSpace(ch) == "" || (len(ch) == 1 && strings.ContainsAny(ch, ".,!?;:"))
}

func ms(seconds float64) int {
	return int(math.Round(seconds * 1000))
}

// Words groups aligned characters into words. Whitespace and .,!?;: end a
// word; a word's duration runs from its first character's start to its
// last character's end.
func Words(a *Alignment) []WordTiming {
	var out []WordTiming
	if !a.usable() {
		return out
	}

	var word strings.Builder
	start := -1
	last := len(a.Characters) - 1
	for i, ch := range a.Characters {
		delim := isDelimiter(ch)
		if !delim {
			if word.Len() == 0 {
				start = i
			}
			word.WriteString(ch)
		}
		if (!delim && i != last) || word.Len() == 0 {
			continue
		}

		end := i
		if delim {
			end = i - 1
		}
		if start >= 0 && end >= start && start < len(a.Starts) && end < len(a.Ends) {
			if d := a.Ends[end] - a.Starts[start]; d >= 0 {
				out = append(out, WordTiming{
					Word:       word.String(),
					StartMS:    ms(a.Starts[start]),
					DurationMS: ms(d),
				})
			}
		}
		word.Reset()
		start = -1
	}
	return out
}

// Emojis returns the start time of every pictographic character.
func Emojis(a *Alignment) []EmojiEvent {
	var out []EmojiEvent
	if !a.usable() {
		return out
	}
	for i, ch := range a.Characters {
		r, _ := utf8.DecodeRuneInString(ch)
		if !IsPictographic(r) || i >= len(a.Starts) {
			continue
		}
		out = append(out, EmojiEvent{Emoji: ch, StartMS: ms(a.Starts[i])})
	}
	return out
}

// pictographic approximates the Unicode Extended_Pictographic property,
// which the unicode package does not export.
var pictographic = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x00a9, Hi: 0x00a9, Stride: 1},
		{Lo: 0x00ae, Hi: 0x00ae, Stride: 1},
		{Lo: 0x203c, Hi: 0x203c, Stride: 1},
		{Lo: 0x2049, Hi: 0x2049, Stride: 1},
		{Lo: 0x2122, Hi: 0x2122, Stride: 1},
		{Lo: 0x2139, Hi: 0x2139, Stride: 1},
		{Lo: 0x2194, Hi: 0x2199, Stride: 1},
		{Lo: 0x21a9, Hi: 0x21aa, Stride: 1},
		{Lo: 0x231a, Hi: 0x231b, Stride: 1},
		{Lo: 0x2328, Hi: 0x2328, Stride: 1},
		{Lo: 0x23cf, Hi: 0x23cf, Stride: 1},
		{Lo: 0x23e9, Hi: 0x23f3, Stride: 1},
		{Lo: 0x23f8, Hi: 0x23fa, Stride: 1},
		{Lo: 0x24c2, Hi: 0x24c2, Stride: 1},
		{Lo: 0x25aa, Hi: 0x25ab, Stride: 1},
		{Lo: 0x25b6, Hi: 0x25b6, Stride: 1},
		{Lo: 0x25c0, Hi: 0x25c0, Stride: 1},
		{Lo: 0x25fb, Hi: 0x25fe, Stride: 1},
		{Lo: 0x2600, Hi: 0x27bf, Stride: 1},
		{Lo: 0x2934, Hi: 0x2935, Stride: 1},
		{Lo: 0x2b05, Hi: 0x2b07, Stride: 1},
		{Lo: 0x2b1b, Hi: 0x2b1c, Stride: 1},
		{Lo: 0x2b50, Hi: 0x2b50, Stride: 1},
		{Lo: 0x2b55, Hi: 0x2b55, Stride: 1},
		{Lo: 0x3030, Hi: 0x3030, Stride: 1},
		{Lo: 0x303d, Hi: 0x303d, Stride: 1},
		{Lo: 0x3297, Hi: 0x3297, Stride: 1},
		{Lo: 0x3299, Hi: 0x3299, Stride: 1},
	},
	R32: []unicode.Range32{
		{Lo: 0x1f000, Hi: 0x1faff, Stride: 1},
		{Lo: 0x1fc00, Hi: 0x1fffd, Stride: 1},
	},
	LatinOffset: 2,
}

// IsPictographic reports whether r is an emoji-like pictograph.
func IsPictographic(r rune) bool {
	return unicode.Is(pictographic, r)
}
