package llms

import "testing"

func TestNewDeclarationBuildsObjectSchema(t *testing.T) {
	tool := NewDeclaration("set_tempo", "Set the clock tempo.", map[string]ParameterBase{
		"bpm": {Type: "number", Description: "Beats per minute."},
	}).WithRequired("bpm")

	if tool.Function.Name != "set_tempo" {
		t.Fatalf("expected name %q, got %q", "set_tempo", tool.Function.Name)
	}
	if tool.Function.Parameters.Type != "object" {
		t.Fatalf("expected object parameters, got %q", tool.Function.Parameters.Type)
	}
	if _, ok := tool.Function.Parameters.Properties["bpm"]; !ok {
		t.Fatalf("expected bpm property in %v", tool.Function.Parameters.Properties)
	}
	if len(tool.Function.Parameters.Required) != 1 || tool.Function.Parameters.Required[0] != "bpm" {
		t.Fatalf("expected required [bpm], got %v", tool.Function.Parameters.Required)
	}
}

func TestDecodeArguments(t *testing.T) {
	type args struct {
		Player string  `json:"player"`
		Amp    float64 `json:"amp"`
	}

	decoded, err := DecodeArguments[args](`{"player": "p1", "amp": 0.7}`)
	if err != nil {
		t.Fatalf("decoding valid arguments: %v", err)
	}
	if decoded.Player != "p1" || decoded.Amp != 0.7 {
		t.Fatalf("unexpected decoded arguments: %+v", decoded)
	}

	decoded, err = DecodeArguments[args]("")
	if err != nil {
		t.Fatalf("decoding empty arguments: %v", err)
	}
	if decoded.Player != "" || decoded.Amp != 0 {
		t.Fatalf("expected zero value for empty arguments, got %+v", decoded)
	}
}

func TestDecodeArgumentsRepairsNearJSON(t *testing.T) {
	type args struct {
		Player string `json:"player"`
	}

	decoded, err := DecodeArguments[args](`{'player': 'd1'`)
	if err != nil {
		t.Fatalf("decoding repairable arguments: %v", err)
	}
	if decoded.Player != "d1" {
		t.Fatalf("expected player d1, got %+v", decoded)
	}
}

func TestDecodeArgumentsRejectsMismatchedTypes(t *testing.T) {
	type args struct {
		Amp float64 `json:"amp"`
	}

	if _, err := DecodeArguments[args](`{"amp": "loud"}`); err == nil {
		t.Fatalf("expected a decode error for mismatched types")
	}
}
