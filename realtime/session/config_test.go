package session

import (
	"encoding/json"
	"testing"

	"github.com/swooby/openai-realtime-go/internal/utils"
)

func TestZeroConfigMarshalsToEmptyObject(t *testing.T) {
	data, err := json.Marshal(&Config{})
	if err != nil {
		t.Fatalf("unexpected marshal error: %v", err)
	}
	if string(data) != "{}" {
		t.Fatalf("expected an empty object, got %s", data)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	original := &Config{
		Modalities:  []string{"text", "audio"},
		Voice:       "alloy",
		Temperature: utils.Ptr(0.8),
		TurnDetection: &TurnDetection{
			Type:      "server_vad",
			Threshold: utils.Ptr(0.5),
		},
	}

	clone := original.Clone()
	clone.Modalities[0] = "changed"
	*clone.Temperature = 0.1
	clone.TurnDetection.Type = "none"

	if original.Modalities[0] != "text" {
		t.Fatalf("expected the original modalities to be untouched, got %v", original.Modalities)
	}
	if *original.Temperature != 0.8 {
		t.Fatalf("expected the original temperature to be untouched, got %v", *original.Temperature)
	}
	if original.TurnDetection.Type != "server_vad" {
		t.Fatalf("expected the original turn detection to be untouched, got %q", original.TurnDetection.Type)
	}
}

func TestCloneNil(t *testing.T) {
	var config *Config
	if config.Clone() != nil {
		t.Fatalf("expected nil clone for a nil config")
	}
}

func TestFunctionToolReflectsParameters(t *testing.T) {
	type weatherArgs struct {
		Location string `json:"location"`
		Unit     string `json:"unit,omitempty"`
	}

	tool, err := FunctionTool("get_weather", "Look up the current weather", weatherArgs{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if tool.Type != "function" || tool.Name != "get_weather" {
		t.Fatalf("unexpected tool header: %+v", tool)
	}
	if tool.Parameters["type"] != "object" {
		t.Fatalf("expected an object schema, got %v", tool.Parameters["type"])
	}
	properties, ok := tool.Parameters["properties"].(map[string]any)
	if !ok {
		t.Fatalf("expected reflected properties, got %v", tool.Parameters)
	}
	if _, ok := properties["location"]; !ok {
		t.Fatalf("expected the location argument in the schema, got %v", properties)
	}
	if _, ok := tool.Parameters["$schema"]; ok {
		t.Fatalf("expected draft metadata to be stripped")
	}
}

func TestFunctionToolAcceptsPointer(t *testing.T) {
	type args struct {
		Query string `json:"query"`
	}
	tool, err := FunctionTool("search", "", &args{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tool.Parameters["type"] != "object" {
		t.Fatalf("expected an object schema, got %v", tool.Parameters["type"])
	}
}
