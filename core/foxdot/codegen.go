package foxdot

import (
	"fmt"
	"strings"

	"github.com/kivria40/foxdot-composer/core/session"
)

// SynthArgs are the arguments of a melodic layer call.
type SynthArgs struct {
	Player      string         `json:"player"`
	Synth       string         `json:"synth"`
	Notes       string         `json:"notes"`
	Dur         string         `json:"dur,omitempty"`
	Amp         float64        `json:"amp,omitempty"`
	Oct         int            `json:"oct,omitempty"`
	Description string         `json:"description,omitempty"`
	Effects     map[string]any `json:"effects,omitempty"`
}

// DrumArgs are the arguments of a percussive layer call.
type DrumArgs struct {
	Player      string         `json:"player"`
	Pattern     string         `json:"pattern"`
	Dur         string         `json:"dur,omitempty"`
	Amp         float64        `json:"amp,omitempty"`
	Description string         `json:"description,omitempty"`
	Effects     map[string]any `json:"effects,omitempty"`
}

// ModifyArgs are the arguments of a layer modification call. Pointer
// fields distinguish "not provided" from zero.
type ModifyArgs struct {
	Player  string         `json:"player"`
	Amp     *float64       `json:"amp,omitempty"`
	Oct     *int           `json:"oct,omitempty"`
	Effects map[string]any `json:"effects,omitempty"`
}

// SynthCode renders a melodic player assignment, filling in the
// defaults the runtime would otherwise pick implicitly.
func SynthCode(args SynthArgs) (string, error) {
	if args.Player == "" || args.Synth == "" || args.Notes == "" {
		return "", fmt.Errorf("play_synth requires player, synth and notes")
	}

	dur := args.Dur
	if dur == "" {
		dur = "1"
	}
	amp := args.Amp
	if amp == 0 {
		amp = 0.7
	}
	oct := args.Oct
	if oct == 0 {
		oct = 5
	}

	params := []string{
		args.Notes,
		fmt.Sprintf("dur=%s", dur),
		fmt.Sprintf("amp=%v", amp),
		fmt.Sprintf("oct=%d", oct),
	}
	params = append(params, effectParams(args.Effects)...)

	return fmt.Sprintf("%s >> %s(%s)", args.Player, args.Synth, strings.Join(params, ", ")), nil
}

// DrumCode renders a percussive player assignment on the play() synth.
func DrumCode(args DrumArgs) (string, error) {
	if args.Player == "" || args.Pattern == "" {
		return "", fmt.Errorf("play_drums requires player and pattern")
	}

	dur := args.Dur
	if dur == "" {
		dur = "0.5"
	}
	amp := args.Amp
	if amp == 0 {
		amp = 0.8
	}

	params := []string{
		fmt.Sprintf("%q", args.Pattern),
		fmt.Sprintf("dur=%s", dur),
		fmt.Sprintf("amp=%v", amp),
	}
	params = append(params, effectParams(args.Effects)...)

	return fmt.Sprintf("%s >> play(%s)", args.Player, strings.Join(params, ", ")), nil
}

// TempoCode renders a tempo change.
func TempoCode(bpm int) (string, error) {
	if bpm <= 0 {
		return "", fmt.Errorf("set_tempo requires a positive bpm")
	}
	return fmt.Sprintf("Clock.bpm = %d", bpm), nil
}

// ScaleCode renders a default-scale change; the scale must be in the
// vocabulary.
func ScaleCode(scale string) (string, error) {
	if !ValidScale(scale) {
		return "", fmt.Errorf("unknown scale %q", scale)
	}
	return fmt.Sprintf("Scale.default = Scale.%s", scale), nil
}

// RootCode renders a default-root change; the root must be in the
// vocabulary.
func RootCode(root string) (string, error) {
	if !ValidRoot(root) {
		return "", fmt.Errorf("unknown root %q", root)
	}
	return fmt.Sprintf("Root.default = %q", root), nil
}

// StopPlayerCode renders a single-player stop.
func StopPlayerCode(player string) (string, error) {
	if player == "" {
		return "", fmt.Errorf("stop_player requires a player")
	}
	return fmt.Sprintf("%s.stop()", player), nil
}

// StopAllCode renders a full clear of the runtime clock.
func StopAllCode() string {
	return "Clock.clear()"
}

// ModifyCode re-renders an existing layer with amplitude, octave or
// effect overrides merged in. The caller resolves the layer; a layer
// for a different player than args.Player is a programming error.
func ModifyCode(layer session.Layer, args ModifyArgs) (string, error) {
	if args.Player == "" {
		return "", fmt.Errorf("modify_layer requires a player")
	}

	amp := layer.Amp
	if args.Amp != nil {
		amp = *args.Amp
	}
	oct := layer.Oct
	if args.Oct != nil {
		oct = *args.Oct
	}
	effects := map[string]any{}
	for name, value := range layer.Effects {
		effects[name] = value
	}
	for name, value := range args.Effects {
		effects[name] = value
	}

	var params []string
	if layer.Synth == "play" {
		params = append(params, fmt.Sprintf("%q", layer.Pattern))
	} else {
		params = append(params, layer.Notes)
	}
	if layer.Dur != "" {
		params = append(params, fmt.Sprintf("dur=%s", layer.Dur))
	}
	if amp != 0 {
		params = append(params, fmt.Sprintf("amp=%v", amp))
	}
	if oct != 0 {
		params = append(params, fmt.Sprintf("oct=%d", oct))
	}
	params = append(params, effectParams(effects)...)

	return fmt.Sprintf("%s >> %s(%s)", args.Player, layer.Synth, strings.Join(params, ", ")), nil
}

// effectParams renders an effect map as sorted key=value parameters so
// generated code is deterministic.
func effectParams(effects map[string]any) []string {
	var params []string
	for _, name := range sortedKeys(effects) {
		params = append(params, fmt.Sprintf("%s=%v", name, effects[name]))
	}
	return params
}
