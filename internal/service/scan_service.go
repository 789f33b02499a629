package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"vinscan-service/internal/domain/vehicle"
	"vinscan-service/internal/inference"
	"vinscan-service/internal/utils"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")

	// ErrInference covers any failure while talking to the model:
	// network, auth, malformed output. The underlying cause is logged,
	// never surfaced to callers.
	ErrInference = errors.New("inference failed")
)

// MsgUnreadable is the soft-failure message when the model returned no
// usable text. The user retries or fills the draft by hand.
const MsgUnreadable = "Impossible de lire les données. Image floue ou reflet ?"

type ScanService struct {
	client *inference.Client
	log    zerolog.Logger
}

func NewScanService(client *inference.Client, log zerolog.Logger) *ScanService {
	return &ScanService{
		client: client,
		log:    log,
	}
}

// Configured reports whether the inference credential is present.
func (s *ScanService) Configured() bool {
	return s.client.Configured()
}

// Extract runs one recognition call. A nil error with a non-empty
// result.Error is a soft failure. The model's JSON output is treated as
// untrusted input and re-validated here despite the schema constraint.
func (s *ScanService) Extract(ctx context.Context, req vehicle.ScanRequest) (*vehicle.RecognitionResult, error) {
	if req.Image == "" {
		return nil, fmt.Errorf("%w: image is required", ErrInvalidInput)
	}

	mode := vehicle.ParseScanMode(req.Mode)
	bt := vehicle.BusinessType(req.BusinessType)
	if !bt.Valid() {
		bt = vehicle.BusinessUsed
	}
	mimeType := req.MimeType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	prompt := inference.PromptFor(mode)
	raw, err := s.client.GenerateVehicleData(ctx, req.Image, mimeType, prompt.Instruction(bt))
	if err != nil {
		if errors.Is(err, inference.ErrMissingAPIKey) {
			return nil, err
		}
		s.log.Error().Err(err).Str("mode", mode.String()).Msg("inference call failed")
		return nil, fmt.Errorf("%w: %v", ErrInference, err)
	}

	if raw == "" {
		s.log.Warn().Str("mode", mode.String()).Msg("model returned no text")
		return &vehicle.RecognitionResult{Error: MsgUnreadable}, nil
	}

	var result vehicle.RecognitionResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		s.log.Error().Err(err).Str("mode", mode.String()).Msg("model output is not schema-conformant JSON")
		return nil, fmt.Errorf("%w: bad model output", ErrInference)
	}

	s.log.Info().
		Str("mode", mode.String()).
		Str("vin", result.VIN).
		Str("make", result.Make).
		Str("model", result.Model).
		Msg("recognition completed")

	return &result, nil
}

// MissingFields returns the mode's required fields the model omitted
// despite the schema declaring them. A non-empty slice is a soft
// failure the caller surfaces inline.
func MissingFields(result *vehicle.RecognitionResult, mode vehicle.ScanMode) []string {
	values := map[string]string{
		"vin":   result.VIN,
		"plate": result.Plate,
		"make":  result.Make,
		"model": result.Model,
		"year":  result.Year,
	}
	var missing []string
	for _, f := range inference.PromptFor(mode).Required {
		if values[f] == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

// MakeDraft sanitizes a recognition result into the editable draft:
// VIN keeps only alphanumerics uppercased, the other fields are
// uppercased verbatim, year stays opaque.
func MakeDraft(result *vehicle.RecognitionResult) vehicle.Draft {
	return vehicle.Draft{
		VIN:   utils.NormalizeVIN(result.VIN),
		Plate: utils.NormalizeField(result.Plate),
		Make:  utils.NormalizeField(result.Make),
		Model: utils.NormalizeField(result.Model),
		Year:  result.Year,
	}
}
