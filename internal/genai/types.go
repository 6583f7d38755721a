package genai

import "encoding/json"

// Content is a single entry in a Gemini conversation.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// Part carries the text payload of a content entry.
type Part struct {
	Text string `json:"text"`
}

// GenerationConfig holds per-request generation settings. Structured requests
// set a response MIME type and schema so the model is constrained to JSON.
type GenerationConfig struct {
	ResponseMIMEType string  `json:"responseMimeType,omitempty"`
	ResponseSchema   *Schema `json:"responseSchema,omitempty"`
}

// Schema describes the expected shape of a structured JSON response, in the
// subset of the Gemini schema vocabulary this client needs.
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

// generateContentRequest is the request body for the generateContent endpoint.
type generateContentRequest struct {
	Contents          []Content         `json:"contents"`
	SystemInstruction *Content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *GenerationConfig `json:"generationConfig,omitempty"`
}

// generateContentResponse is the response body for the generateContent endpoint.
type generateContentResponse struct {
	Candidates []candidate `json:"candidates"`
}

type candidate struct {
	Content      Content `json:"content"`
	FinishReason string  `json:"finishReason,omitempty"`
}

// text concatenates all text parts of the first candidate.
func (r *generateContentResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var out string
	for _, p := range r.Candidates[0].Content.Parts {
		out += p.Text
	}
	return out
}

// apiErrorResponse is the error envelope returned by the API.
type apiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func parseAPIError(body []byte) (string, bool) {
	var e apiErrorResponse
	if err := json.Unmarshal(body, &e); err != nil || e.Error.Message == "" {
		return "", false
	}
	return e.Error.Message, true
}
