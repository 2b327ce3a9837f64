package recognition

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const platePrompt = `Read the licence plate in this photo. Reply with JSON only:
{"plate": "<characters without spaces or dashes, uppercase>", "confidence": <0..1>}.
Use an empty plate and confidence 0 if no plate is legible.`

const vehiclePrompt = `Identify the vehicle in this photo. Reply with JSON only:
{"make": "<manufacturer>", "model": "<model>", "color": "<main colour in Spanish>", "confidence": <0..1>}.`

// Gemini recognizes plates and vehicles with a multimodal Gemini model.
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGemini(ctx context.Context, apiKey, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is not configured")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	model := client.GenerativeModel(modelName)
	model.SetTemperature(0)
	model.ResponseMIMEType = "application/json"
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Close() error {
	return g.client.Close()
}

func (g *Gemini) RecognizePlate(ctx context.Context, image []byte, mimeType string) (PlateReading, error) {
	var out struct {
		Plate      string  `json:"plate"`
		Confidence float64 `json:"confidence"`
	}
	if err := g.ask(ctx, image, mimeType, platePrompt, &out); err != nil {
		return PlateReading{}, err
	}
	return PlateReading{Text: NormalizePlate(out.Plate), Confidence: clamp01(out.Confidence)}, nil
}

func (g *Gemini) RecognizeVehicle(ctx context.Context, image []byte, mimeType string) (VehicleReading, error) {
	var out VehicleReading
	if err := g.ask(ctx, image, mimeType, vehiclePrompt, &out); err != nil {
		return VehicleReading{}, err
	}
	out.Confidence = clamp01(out.Confidence)
	return out, nil
}

func (g *Gemini) ask(ctx context.Context, image []byte, mimeType, prompt string, out any) error {
	if len(image) == 0 {
		return ErrEmptyImage
	}
	resp, err := g.model.GenerateContent(ctx, genai.ImageData(imageFormat(mimeType), image), genai.Text(prompt))
	if err != nil {
		return fmt.Errorf("gemini generate error: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return fmt.Errorf("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}
	if err := json.Unmarshal([]byte(sb.String()), out); err != nil {
		return fmt.Errorf("gemini returned malformed JSON: %w", err)
	}
	return nil
}

// imageFormat turns "image/jpeg" into "jpeg".
func imageFormat(mimeType string) string {
	format := strings.TrimPrefix(strings.ToLower(mimeType), "image/")
	if format == "" || format == "jpg" {
		return "jpeg"
	}
	return format
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
