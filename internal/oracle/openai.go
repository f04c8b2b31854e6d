package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"docverify/internal/config"
)

// Client implements every oracle interface on top of the OpenAI chat API.
// All calls request JSON-object responses at low temperature; answers that
// still arrive fenced in markdown are tolerated.
type Client struct {
	api   *openai.Client
	model string
	log   *slog.Logger
}

func NewClient(cfg config.OracleConfig, log *slog.Logger) *Client {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		oc.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		api:   openai.NewClientWithConfig(oc),
		model: cfg.Model,
		log:   log.With("component", "oracle"),
	}
}

// chatJSON runs one chat call and decodes the JSON object reply into out.
func (c *Client) chatJSON(ctx context.Context, system, prompt string, out any) error {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0.1,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return fmt.Errorf("chat completion: empty response")
	}
	content := stripFences(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), out); err != nil {
		return fmt.Errorf("decode oracle reply: %w", err)
	}
	return nil
}

// stripFences removes a markdown code fence wrapper if the model added one.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

// ClassifyDocument labels a document from its OCR summary, constrained to the
// closed type vocabulary the caller embeds in downstream resolution.
func (c *Client) ClassifyDocument(ctx context.Context, summary string) (string, error) {
	prompt := fmt.Sprintf(`Classify this document based on its extracted text.

Document text:
%s

Respond with JSON: {"document_type": "<snake_case label>"}
Use a specific label such as driving_license, passport, state_id, social_security_card,
birth_certificate, permanent_resident_card, bank_statement, utility_bill. If unsure,
use identity_document.`, summary)

	var reply struct {
		DocumentType string `json:"document_type"`
	}
	if err := c.chatJSON(ctx, "You are a document classification expert. Always return valid JSON only.", prompt, &reply); err != nil {
		return "", err
	}
	return strings.TrimSpace(strings.ToLower(reply.DocumentType)), nil
}

// ExtractFields pulls exactly the expected fields out of raw OCR data.
func (c *Client) ExtractFields(ctx context.Context, docType string, expected []string, input map[string]any) (map[string]any, error) {
	fieldsJSON, _ := json.Marshal(expected)
	inputJSON, _ := json.MarshalIndent(input, "", "  ")
	prompt := fmt.Sprintf(`You are a strict document field extractor for %s documents.

CRITICAL REQUIREMENTS:
1. ONLY extract these exact fields: %s
2. Match field names case-insensitively from the input
3. If a required field is missing or empty, set it to ""
4. DO NOT include any fields not in the required list
5. Return ONLY a valid JSON object with the specified fields

Input OCR data:
%s`, strings.ToUpper(docType), fieldsJSON, inputJSON)

	out := map[string]any{}
	if err := c.chatJSON(ctx, "You are a document field extraction expert. Always return valid JSON only.", prompt, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ExtractProfile distills a stored verification artifact into the standard
// borrower fields plus any additional identity fields present.
func (c *Client) ExtractProfile(ctx context.Context, documentName string, data map[string]any) (Profile, error) {
	dataJSON, _ := json.MarshalIndent(data, "", "  ")
	prompt := fmt.Sprintf(`You are a document analysis expert. Extract identity fields from this document.

Document type: %s
Document data:
%s

Extract these standard fields if present (use exact field names):
firstName, middleName, lastName, dateOfBirth (normalize to MM/DD/YYYY if possible),
licenseNumber (prefer the shorter license number if multiple IDs are present),
licenseState (state code), placeOfBirth.

Also extract any additional identity fields like suffix, addressLine1, city, zip,
expirationDate, issueDate.

Return format:
{"standard_fields": {"firstName": "value or null", ...}, "additional_fields": {...}}`, documentName, dataJSON)

	var raw struct {
		Standard   map[string]any `json:"standard_fields"`
		Additional map[string]any `json:"additional_fields"`
	}
	if err := c.chatJSON(ctx, "You are a document field extraction expert. Always return valid JSON only.", prompt, &raw); err != nil {
		return Profile{}, err
	}
	return Profile{Standard: stringMap(raw.Standard), Additional: stringMap(raw.Additional)}, nil
}

// stringMap flattens an oracle reply map, dropping nulls.
func stringMap(in map[string]any) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		if v == nil {
			continue
		}
		s := strings.TrimSpace(fmt.Sprint(v))
		if s == "" || strings.EqualFold(s, "null") {
			continue
		}
		out[k] = s
	}
	return out
}

// CompareValues decides whether a document value semantically matches the
// system-of-record value. Empty-value special cases are handled locally; the
// model only sees real comparisons.
func (c *Client) CompareValues(ctx context.Context, field, reference, value, documentName string) (Comparison, error) {
	switch {
	case reference == "" && value == "":
		return Comparison{Match: true, Reason: "both values are empty"}, nil
	case reference == "":
		return Comparison{Match: true, Reason: "no reference value to compare"}, nil
	case value == "":
		return Comparison{Match: false, Reason: fmt.Sprintf("%s has no value for this field", documentName)}, nil
	}

	prompt := fmt.Sprintf(`Compare these two values for the field '%s':

Reference (system of record): %q
Document (%s): %q

Are they the same? Consider:
- Exact matches
- Case differences (JOHN vs John)
- Format differences (07/25/1980 vs 1980-07-25 vs July 25, 1980)
- Abbreviations (DEAN vs D, Street vs St)
- Nicknames (common name variations)
- Semantic equivalence (1150 GOODWIN PL NE vs 1150 Goodwin Place Northeast)

Return format: {"match": true or false, "reason": "brief explanation"}`, field, reference, documentName, value)

	var cmp Comparison
	if err := c.chatJSON(ctx, "You are a data validation expert. Always return valid JSON only.", prompt, &cmp); err != nil {
		return Comparison{}, err
	}
	return cmp, nil
}

// FindConsensus asks the model which value the documents agree on. Trivial
// cases (no values, one value) never reach the model.
func (c *Client) FindConsensus(ctx context.Context, field string, values map[string]string) (Consensus, error) {
	valid := make(map[string]string, len(values))
	for doc, v := range values {
		if v != "" {
			valid[doc] = v
		}
	}
	if len(valid) == 0 {
		return Consensus{
			TotalDocuments: len(values),
			Issue:          "no values found in any document",
		}, nil
	}
	if len(valid) == 1 {
		for _, v := range valid {
			return Consensus{Value: v, AgreementCount: 1, TotalDocuments: 1, AllMatch: true}, nil
		}
	}

	valuesJSON, _ := json.MarshalIndent(valid, "", "  ")
	prompt := fmt.Sprintf(`Analyze these values for field '%s' across multiple documents:

%s

Determine:
1. Are these values semantically the same?
2. What is the consensus/most likely correct value?
3. How many documents agree with the consensus?
4. Do all documents match (considering semantic equivalence)?

Consider format variations (dates, addresses), abbreviations, and case differences.

Return format:
{"consensus": "most likely correct value", "agreement_count": N, "total_documents": %d, "all_match": true or false, "issue": "description if mismatch, else null"}`, field, valuesJSON, len(valid))

	var cons Consensus
	if err := c.chatJSON(ctx, "You are a consensus analysis expert. Always return valid JSON only.", prompt, &cons); err != nil {
		return Consensus{}, err
	}
	if cons.TotalDocuments == 0 {
		cons.TotalDocuments = len(valid)
	}
	return cons, nil
}
