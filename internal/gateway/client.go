package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"vinscan-service/internal/domain/vehicle"
)

// MsgImageTooLarge is the fixed message for an oversized payload,
// regardless of what the server put in the body.
const MsgImageTooLarge = "L'image est trop lourde pour être traitée. Réessayez avec une photo moins zoomée."

var ErrRecognition = errors.New("recognition request failed")

// Error carries the single user-facing message for a failed call. It
// unwraps to ErrRecognition so callers can branch with errors.Is.
type Error struct {
	UserMessage string
}

func (e *Error) Error() string {
	return ErrRecognition.Error() + ": " + e.UserMessage
}

func (e *Error) Unwrap() error {
	return ErrRecognition
}

func failure(format string, args ...any) error {
	return &Error{UserMessage: fmt.Sprintf(format, args...)}
}

// Client is the thin network layer between the capture flow and the
// relay. It classifies transport failures into user-facing messages;
// a soft error inside a successful body is passed through untouched.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

func New(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Extract calls the relay once. No retry, no backoff: every retry is a
// fresh user action.
func (c *Client) Extract(ctx context.Context, imageBase64 string, mode vehicle.ScanMode, businessType vehicle.BusinessType, mimeType string) (*vehicle.RecognitionResult, error) {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	reqBody := vehicle.ScanRequest{
		Image:        imageBase64,
		Mode:         mode.String(),
		BusinessType: string(businessType),
		MimeType:     mimeType,
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, failure("%v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/scan", bytes.NewReader(body))
	if err != nil {
		return nil, failure("%v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, failure("%v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, failure("%v", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, classifyFailure(resp, respBody)
	}

	var result vehicle.RecognitionResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, failure("%v", err)
	}
	return &result, nil
}

func classifyFailure(resp *http.Response, body []byte) error {
	if resp.StatusCode == http.StatusRequestEntityTooLarge {
		return &Error{UserMessage: MsgImageTooLarge}
	}

	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		var payload struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
			return &Error{UserMessage: payload.Error}
		}
		return failure("Erreur serveur (%d)", resp.StatusCode)
	}

	// Often an HTML error page from a proxy.
	return failure("Erreur réseau : le serveur a répondu %d.", resp.StatusCode)
}

// Message recovers the user-facing text from a classified error, no
// matter how many times it has been re-wrapped.
func Message(err error) string {
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr.UserMessage
	}
	return err.Error()
}
