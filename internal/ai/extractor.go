package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/openai/openai-go/shared/constant"
)

// POFields is the structured result of reading a vendor purchase order
// document. Amounts are exact decimal strings.
type POFields struct {
	PONumber  string `json:"po_number" jsonschema_description:"Purchase order number printed on the document"`
	JobNumber string `json:"job_number" jsonschema_description:"Referenced job number, if present"`
	Subtotal  string `json:"subtotal" jsonschema_description:"Subtotal before tax as a decimal string, e.g. 80.00"`
	Tax       string `json:"tax" jsonschema_description:"Tax amount as a decimal string"`
	Total     string `json:"total" jsonschema_description:"Grand total as a decimal string"`
}

func (f *POFields) Normalize() {
	f.PONumber = strings.TrimSpace(f.PONumber)
	f.JobNumber = strings.TrimSpace(f.JobNumber)
	f.Subtotal = strings.TrimSpace(f.Subtotal)
	f.Tax = strings.TrimSpace(f.Tax)
	f.Total = strings.TrimSpace(f.Total)
}

type ExtractorService interface {
	ExtractPOFields(ctx context.Context, documentText string) (*POFields, error)
}

type Extractor struct {
	client *openai.Client
}

func NewExtractor(apiKey string) *Extractor {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Extractor{client: &client}
}

// ExtractPOFields pulls structured fields out of the text of a vendor PO
// document using a strict JSON schema response.
func (e *Extractor) ExtractPOFields(ctx context.Context, documentText string) (*POFields, error) {
	prompt := fmt.Sprintf(`You are reading a print-industry purchase order document.
Extract the fields below exactly as they appear.
Rules:
1. Amounts must be exact decimal strings (e.g. "80.00").
2. Use an empty string for any field not present in the document.
3. Do not invent values.

Document:
%s`, documentText)

	schemaStruct := generateSchema()
	schemaJSON, err := json.Marshal(schemaStruct)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema to map: %w", err)
	}

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(shared.ChatModelGPT4o),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(prompt),
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Type:        constant.JSONSchema("json_schema"),
					Name:        "purchase_order_fields",
					Strict:      param.NewOpt(true),
					Schema:      schemaMap,
					Description: param.NewOpt("Fields extracted from a vendor purchase order document"),
				},
			},
		},
	}

	resp, err := e.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai responses error: %w", err)
	}

	content := resp.OutputText()
	if content == "" {
		return nil, fmt.Errorf("empty response content")
	}

	var fields POFields
	if err := json.Unmarshal([]byte(content), &fields); err != nil {
		return nil, fmt.Errorf("failed to parse completion: %w", err)
	}
	fields.Normalize()
	return &fields, nil
}

func generateSchema() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v POFields
	return reflector.Reflect(v)
}
