package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"
)

var ErrMissingAPIKey = errors.New("gemini api key not configured")

// Client calls the Gemini generateContent REST endpoint with an inline
// image and a JSON-constrained response schema.
type Client struct {
	httpClient *http.Client
	apiKey     string
	model      string
	baseURL    string
	log        zerolog.Logger
}

func NewClient(apiKey, model, baseURL string, log zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{},
		apiKey:     apiKey,
		model:      model,
		baseURL:    baseURL,
		log:        log,
	}
}

// Configured reports whether the server-held credential is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generationConfig struct {
	ResponseMimeType string          `json:"responseMimeType,omitempty"`
	ResponseSchema   *responseSchema `json:"responseSchema,omitempty"`
}

type responseSchema struct {
	Type       string                    `json:"type"`
	Properties map[string]schemaProperty `json:"properties,omitempty"`
	Required   []string                  `json:"required,omitempty"`
}

type schemaProperty struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// vehicleSchema is the constrained output shape the model must follow.
// vin is declared required, but the model may still omit it; the caller
// treats that as a soft failure.
var vehicleSchema = &responseSchema{
	Type: "OBJECT",
	Properties: map[string]schemaProperty{
		"vin":   {Type: "STRING", Description: "Numéro de châssis exact"},
		"plate": {Type: "STRING", Description: "Immatriculation"},
		"make":  {Type: "STRING", Description: "Marque constructeur"},
		"model": {Type: "STRING", Description: "Modèle précis"},
		"year":  {Type: "STRING", Description: "Année"},
	},
	Required: []string{"vin"},
}

// GenerateVehicleData sends the image plus the mode instruction and
// returns the model's raw text response. An empty string with a nil
// error means the model produced no usable text.
func (c *Client) GenerateVehicleData(ctx context.Context, imageBase64, mimeType, instruction string) (string, error) {
	if !c.Configured() {
		return "", ErrMissingAPIKey
	}

	reqBody := generateRequest{
		Contents: []content{{
			Parts: []part{
				{InlineData: &inlineData{MimeType: mimeType, Data: imageBase64}},
				{Text: instruction},
			},
		}},
		GenerationConfig: &generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   vehicleSchema,
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read gemini response: %w", err)
	}

	var parsed generateResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("decode gemini response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := "unknown error"
		if parsed.Error != nil {
			msg = parsed.Error.Message
		}
		c.log.Error().
			Int("status", resp.StatusCode).
			Str("model", c.model).
			Str("message", msg).
			Msg("gemini call failed")
		return "", fmt.Errorf("gemini status %d: %s", resp.StatusCode, msg)
	}

	for _, cand := range parsed.Candidates {
		for _, p := range cand.Content.Parts {
			if p.Text != "" {
				return p.Text, nil
			}
		}
	}
	return "", nil
}
