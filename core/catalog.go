package composer

import (
	"context"
	"fmt"

	"github.com/kivria40/foxdot-composer/core/conversations"
	"github.com/kivria40/foxdot-composer/core/foxdot"
	"github.com/kivria40/foxdot-composer/core/llms"
	"github.com/kivria40/foxdot-composer/core/session"
)

// callHandler pairs a catalog declaration with its resolution: decode
// arguments, build code, mutate the session and (when enabled) execute.
type callHandler struct {
	tool    llms.Tool
	resolve func(ctx context.Context, e *Engine, arguments string) conversations.CallResult
}

func errorResult(err error) conversations.CallResult {
	return conversations.CallResult{Status: conversations.StatusError, Error: err.Error()}
}

// buildCatalog returns the fixed, closed set of calls the model may
// issue, in declaration order.
func buildCatalog() []callHandler {
	melodicPlayers := append(append(session.PlayerNames(session.RoleMelodic), session.PlayerNames(session.RoleBass)...), session.PlayerNames(session.RolePad)...)

	synthEffects := llms.ParameterBase{
		Type:        "object",
		Description: "Optional effects like room, lpf, vib, slide, etc.",
		Properties: map[string]llms.ParameterBase{
			"room":  {Type: "number", Description: "Reverb amount (0-1)"},
			"lpf":   {Type: "integer", Description: "Low-pass filter frequency"},
			"hpf":   {Type: "integer", Description: "High-pass filter frequency"},
			"vib":   {Type: "number", Description: "Vibrato depth"},
			"slide": {Type: "number", Description: "Pitch slide amount"},
			"chop":  {Type: "integer", Description: "Chop into pieces"},
			"pan":   {Type: "number", Description: "Stereo pan (-1 to 1)"},
		},
	}
	drumEffects := llms.ParameterBase{
		Type:        "object",
		Description: "Optional effects",
		Properties: map[string]llms.ParameterBase{
			"room":   {Type: "number"},
			"sample": {Type: "integer", Description: "Sample variation number"},
			"rate":   {Type: "number", Description: "Playback rate"},
			"pan":    {Type: "number"},
			"lpf":    {Type: "integer"},
			"coarse": {Type: "integer", Description: "Bit crush amount"},
		},
	}

	return []callHandler{
		{
			tool: llms.NewDeclaration("play_synth",
				"Play a melodic synthesizer with specified notes and parameters. Use this to create melodies, basslines, chord progressions, and lead lines.",
				map[string]llms.ParameterBase{
					"player":      {Type: "string", Description: "Player name (p1-p9 for melody, b1-b4 for bass, pad1-pad3 for pads)", Enum: melodicPlayers},
					"synth":       {Type: "string", Description: "Synth name (pluck, bass, keys, piano, pads, blip, saw, etc.)"},
					"notes":       {Type: "string", Description: "Notes pattern as list string, e.g. '[0, 2, 4, 7]' or '[(0,2,4), 1, 2]' for chords"},
					"dur":         {Type: "string", Description: "Duration pattern, e.g. '1', '[1, 0.5, 0.5]', '1/4'"},
					"amp":         {Type: "number", Description: "Amplitude/volume (0.0 to 1.0)"},
					"oct":         {Type: "integer", Description: "Octave (3-7, default 5)"},
					"description": {Type: "string", Description: "Human-readable description of this layer"},
					"effects":     synthEffects,
				}).WithRequired("player", "synth", "notes", "description"),
			resolve: resolvePlaySynth,
		},
		{
			tool: llms.NewDeclaration("play_drums",
				"Play a drum/percussion pattern using sample characters. Use 'x' for kick, 'o' for snare, '-' for hi-hat, '*' for clap, etc.",
				map[string]llms.ParameterBase{
					"player":      {Type: "string", Description: "Drum player name (d1-d9)", Enum: session.PlayerNames(session.RoleDrums)},
					"pattern":     {Type: "string", Description: "Drum pattern string, e.g. 'x-o-x-o-'"},
					"dur":         {Type: "string", Description: "Duration pattern, e.g. '1', '0.5', '[1, 0.5]'"},
					"amp":         {Type: "number", Description: "Amplitude/volume (0.0 to 1.0)"},
					"description": {Type: "string", Description: "Human-readable description of this drum pattern"},
					"effects":     drumEffects,
				}).WithRequired("player", "pattern", "description"),
			resolve: resolvePlayDrums,
		},
		{
			tool: llms.NewDeclaration("set_tempo",
				"Set the tempo in beats per minute (BPM). Typical ranges: ambient 60-90, hip-hop 85-115, house 120-130, techno 125-150, drum & bass 160-180.",
				map[string]llms.ParameterBase{
					"bpm": {Type: "integer", Description: "Tempo in beats per minute (40-200)"},
				}).WithRequired("bpm"),
			resolve: resolveSetTempo,
		},
		{
			tool: llms.NewDeclaration("set_scale",
				"Set the musical scale for all players.",
				map[string]llms.ParameterBase{
					"scale": {Type: "string", Description: "Scale name", Enum: foxdot.Scales},
				}).WithRequired("scale"),
			resolve: resolveSetScale,
		},
		{
			tool: llms.NewDeclaration("set_root",
				"Set the root note (key) for all players.",
				map[string]llms.ParameterBase{
					"root": {Type: "string", Description: "Root note name", Enum: foxdot.Roots},
				}).WithRequired("root"),
			resolve: resolveSetRoot,
		},
		{
			tool: llms.NewDeclaration("stop_player",
				"Stop a specific player from playing.",
				map[string]llms.ParameterBase{
					"player": {Type: "string", Description: "Player name to stop (p1-p9, d1-d9, b1-b4, etc.)"},
				}).WithRequired("player"),
			resolve: resolveStopPlayer,
		},
		{
			tool: llms.NewDeclaration("stop_all",
				"Stop all music and clear all players. Use when the user wants silence or to start fresh.",
				map[string]llms.ParameterBase{}),
			resolve: resolveStopAll,
		},
		{
			tool: llms.NewDeclaration("modify_layer",
				"Modify an existing layer's parameters without changing its core pattern.",
				map[string]llms.ParameterBase{
					"player":  {Type: "string", Description: "Player name to modify"},
					"amp":     {Type: "number", Description: "New amplitude"},
					"oct":     {Type: "integer", Description: "New octave"},
					"effects": synthEffects,
				}).WithRequired("player"),
			resolve: resolveModifyLayer,
		},
		{
			tool: llms.NewDeclaration("execute_code",
				"Execute raw FoxDot code directly. Use for advanced patterns or features not covered by other functions.",
				map[string]llms.ParameterBase{
					"code":        {Type: "string", Description: "Raw FoxDot code to execute"},
					"description": {Type: "string", Description: "Description of what the code does"},
				}).WithRequired("code", "description"),
			resolve: resolveExecuteCode,
		},
		{
			tool: llms.NewDeclaration("get_session_state",
				"Get the current state of the music session including all active layers, tempo, scale, etc.",
				map[string]llms.ParameterBase{}),
			resolve: resolveGetSessionState,
		},
	}
}

func resolvePlaySynth(ctx context.Context, e *Engine, arguments string) conversations.CallResult {
	args, err := llms.DecodeArguments[foxdot.SynthArgs](arguments)
	if err != nil {
		return errorResult(err)
	}
	code, err := foxdot.SynthCode(args)
	if err != nil {
		return errorResult(err)
	}
	e.session.UpsertLayer(session.Layer{
		Player:      args.Player,
		Synth:       args.Synth,
		Code:        code,
		Description: args.Description,
		Notes:       args.Notes,
		Dur:         args.Dur,
		Amp:         args.Amp,
		Oct:         args.Oct,
		Effects:     args.Effects,
	})
	return e.executeCode(ctx, code, args.Description, []string{args.Player})
}

func resolvePlayDrums(ctx context.Context, e *Engine, arguments string) conversations.CallResult {
	args, err := llms.DecodeArguments[foxdot.DrumArgs](arguments)
	if err != nil {
		return errorResult(err)
	}
	code, err := foxdot.DrumCode(args)
	if err != nil {
		return errorResult(err)
	}
	e.session.UpsertLayer(session.Layer{
		Player:      args.Player,
		Synth:       "play",
		Code:        code,
		Description: args.Description,
		Pattern:     args.Pattern,
		Dur:         args.Dur,
		Amp:         args.Amp,
		Effects:     args.Effects,
	})
	return e.executeCode(ctx, code, args.Description, []string{args.Player})
}

func resolveSetTempo(ctx context.Context, e *Engine, arguments string) conversations.CallResult {
	args, err := llms.DecodeArguments[struct {
		BPM int `json:"bpm"`
	}](arguments)
	if err != nil {
		return errorResult(err)
	}
	code, err := foxdot.TempoCode(args.BPM)
	if err != nil {
		return errorResult(err)
	}
	e.session.SetTempo(args.BPM)
	return e.executeCode(ctx, code, fmt.Sprintf("set tempo to %d bpm", args.BPM), nil)
}

func resolveSetScale(ctx context.Context, e *Engine, arguments string) conversations.CallResult {
	args, err := llms.DecodeArguments[struct {
		Scale string `json:"scale"`
	}](arguments)
	if err != nil {
		return errorResult(err)
	}
	code, err := foxdot.ScaleCode(args.Scale)
	if err != nil {
		return errorResult(err)
	}
	e.session.SetScale(args.Scale)
	return e.executeCode(ctx, code, "set scale to "+args.Scale, nil)
}

func resolveSetRoot(ctx context.Context, e *Engine, arguments string) conversations.CallResult {
	args, err := llms.DecodeArguments[struct {
		Root string `json:"root"`
	}](arguments)
	if err != nil {
		return errorResult(err)
	}
	code, err := foxdot.RootCode(args.Root)
	if err != nil {
		return errorResult(err)
	}
	e.session.SetRoot(args.Root)
	return e.executeCode(ctx, code, "set root to "+args.Root, nil)
}

func resolveStopPlayer(ctx context.Context, e *Engine, arguments string) conversations.CallResult {
	args, err := llms.DecodeArguments[struct {
		Player string `json:"player"`
	}](arguments)
	if err != nil {
		return errorResult(err)
	}
	code, err := foxdot.StopPlayerCode(args.Player)
	if err != nil {
		return errorResult(err)
	}
	e.session.RemoveLayer(args.Player)
	return e.executeCode(ctx, code, "stop "+args.Player, []string{args.Player})
}

func resolveStopAll(ctx context.Context, e *Engine, _ string) conversations.CallResult {
	players := e.session.ActivePlayers()
	e.session.ClearAll()
	return e.executeCode(ctx, foxdot.StopAllCode(), "stop all music", players)
}

func resolveModifyLayer(ctx context.Context, e *Engine, arguments string) conversations.CallResult {
	args, err := llms.DecodeArguments[foxdot.ModifyArgs](arguments)
	if err != nil {
		return errorResult(err)
	}
	layer, ok := e.session.Layer(args.Player)
	if !ok {
		return errorResult(fmt.Errorf("player %q not found", args.Player))
	}
	code, err := foxdot.ModifyCode(layer, args)
	if err != nil {
		return errorResult(err)
	}

	if args.Amp != nil {
		layer.Amp = *args.Amp
	}
	if args.Oct != nil {
		layer.Oct = *args.Oct
	}
	if layer.Effects == nil {
		layer.Effects = map[string]any{}
	}
	for name, value := range args.Effects {
		layer.Effects[name] = value
	}
	layer.Code = code
	e.session.UpsertLayer(layer)

	return e.executeCode(ctx, code, "modify "+args.Player, []string{args.Player})
}

func resolveExecuteCode(ctx context.Context, e *Engine, arguments string) conversations.CallResult {
	args, err := llms.DecodeArguments[struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	}](arguments)
	if err != nil {
		return errorResult(err)
	}
	if args.Code == "" {
		return errorResult(fmt.Errorf("execute_code requires code"))
	}
	return e.executeCode(ctx, args.Code, args.Description, foxdot.ExtractPlayers(args.Code))
}

func resolveGetSessionState(_ context.Context, e *Engine, _ string) conversations.CallResult {
	return conversations.CallResult{
		Status: conversations.StatusSuccess,
		Output: e.session.Describe(),
	}
}
