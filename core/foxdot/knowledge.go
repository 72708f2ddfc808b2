// Package foxdot turns structured call arguments into FoxDot source and
// carries the vocabulary (synths, scales, roots, sample characters)
// used to constrain and enrich generation. Pure, no I/O.
package foxdot

import (
	"fmt"
	"sort"
	"strings"
)

// Synths maps synth names to a short character description, used in
// prompt text so the model picks sounds deliberately.
var Synths = map[string]string{
	"pluck":   "bright, percussive attack with decay",
	"bass":    "warm, deep, powerful low frequencies",
	"sawbass": "aggressive, buzzy, rich harmonics",
	"sinepad": "smooth, warm, ethereal",
	"pads":    "full, rich, sustaining",
	"charm":   "bell-like, shimmering, crystalline",
	"bell":    "metallic, resonant, clear attack",
	"gong":    "deep, resonant, metallic",
	"soprano": "airy, vocal, high register",
	"blip":    "short, punchy, electronic",
	"pulse":   "hollow, classic, variable width",
	"saw":     "bright, buzzy, harmonically rich",
	"square":  "hollow, retro, chiptune-like",
	"soft":    "gentle, warm, unobtrusive",
	"keys":    "warm, Rhodes-like, jazzy",
	"piano":   "natural, percussive, dynamic",
	"marimba": "wooden, warm, mallet percussion",
	"scatter": "textured, scattered, ambient",
	"noise":   "noisy, textural, percussive",
	"dub":     "deep, reggae/dub influenced",
}

// Scales is the closed set of scale names the model may set.
var Scales = []string{
	"major", "minor", "dorian", "phrygian", "lydian", "mixolydian",
	"locrian", "pentatonic", "minorPentatonic", "blues", "harmonicMinor",
	"melodicMinor", "whole", "chromatic", "egyptian", "japanese", "chinese",
}

// Roots is the closed set of root note names the model may set.
var Roots = []string{
	"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B",
	"Db", "Eb", "Gb", "Ab", "Bb",
}

// SampleCharacters maps the drum-pattern alphabet to what each
// character sounds like when passed to play().
var SampleCharacters = map[string]string{
	"x": "kick drum, punchy and low",
	"o": "snare drum, snappy",
	"O": "heavy snare, thick",
	"*": "clap, snappy and wide",
	"-": "closed hi-hat, tight",
	"=": "open hi-hat, sizzling",
	"~": "ride cymbal, washy",
	":": "shaker, textured",
	"#": "crash cymbal, big",
	"t": "high tom",
	"u": "mid tom",
	"v": "low tom",
	"+": "click, short and high",
	"s": "rim shot, crisp",
	"b": "bass hit, low and punchy",
	"d": "deep kick, sub",
}

// ValidScale reports whether name is in the scale vocabulary.
func ValidScale(name string) bool {
	for _, scale := range Scales {
		if scale == name {
			return true
		}
	}
	return false
}

// ValidRoot reports whether name is in the root-note vocabulary.
func ValidRoot(name string) bool {
	for _, root := range Roots {
		if root == name {
			return true
		}
	}
	return false
}

// Reference renders the vocabulary as prompt-ready text.
func Reference() string {
	var b strings.Builder

	b.WriteString("### Available Synths (use with: p1 >> synth_name([notes]))\n")
	for _, name := range sortedKeys(Synths) {
		fmt.Fprintf(&b, "- %s: %s\n", name, Synths[name])
	}

	b.WriteString("\n### Scales (use with: Scale.default = Scale.name)\n")
	b.WriteString(strings.Join(Scales, ", "))
	b.WriteString("\n")

	b.WriteString("\n### Root Notes\n")
	b.WriteString(strings.Join(Roots, ", "))
	b.WriteString("\n")

	b.WriteString("\n### Drum Pattern Characters (use with: d1 >> play(\"pattern\"))\n")
	for _, char := range sortedKeys(SampleCharacters) {
		fmt.Fprintf(&b, "- %q: %s\n", char, SampleCharacters[char])
	}

	return b.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
