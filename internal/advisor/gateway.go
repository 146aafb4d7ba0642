package advisor

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// BlockKind distinguishes plain text output from non-text artifacts
// (tool traces, inline data) in a model response.
type BlockKind string

const (
	BlockText     BlockKind = "text"
	BlockArtifact BlockKind = "artifact"
)

// Block is one content block of a model response, in emission order.
type Block struct {
	Kind BlockKind
	Text string
}

// RawOutput is the ordered block sequence produced by a single model
// call. It is consumed exactly once by the normalizer and discarded.
type RawOutput struct {
	Blocks []Block
}

// JoinText concatenates all text blocks in emission order, joined by a
// newline. Non-text blocks are skipped; their presence is not an error.
func (o RawOutput) JoinText() string {
	parts := make([]string, 0, len(o.Blocks))
	for _, b := range o.Blocks {
		if b.Kind == BlockText {
			parts = append(parts, b.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// GenerateRequest describes a single model invocation.
type GenerateRequest struct {
	Prompt            string
	SystemInstruction string

	// EnableWebSearch turns on the model's search tool so it can ground
	// answers in live retailer and market data.
	EnableWebSearch bool

	// MaxOutputTokens caps the response size; zero means provider default.
	MaxOutputTokens int32
}

// ModelClient is the boundary around the external LLM service. One
// outbound network call per Generate invocation; no retries, no state
// retained between calls.
type ModelClient interface {
	Generate(ctx context.Context, req GenerateRequest) (RawOutput, error)
}

// GeminiClient calls the Gemini API via google.golang.org/genai.
type GeminiClient struct {
	model string
	log   zerolog.Logger
}

// NewGeminiClient returns a gateway bound to the given model name.
// Credentials are picked up from the environment by the genai SDK.
func NewGeminiClient(model string, log zerolog.Logger) *GeminiClient {
	return &GeminiClient{model: model, log: log}
}

// Generate performs exactly one GenerateContent call and converts the
// response into an ordered block sequence. Any transport, auth, or
// rate-limit failure is returned as a *GatewayError.
func (c *GeminiClient) Generate(ctx context.Context, req GenerateRequest) (RawOutput, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return RawOutput{}, &GatewayError{Op: "generate", Err: err}
	}

	config := &genai.GenerateContentConfig{}
	if req.MaxOutputTokens > 0 {
		config.MaxOutputTokens = req.MaxOutputTokens
	}
	if req.SystemInstruction != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemInstruction}},
		}
	}
	if req.EnableWebSearch {
		config.Tools = []*genai.Tool{
			{GoogleSearch: &genai.GoogleSearch{}},
		}
	}

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: req.Prompt}},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return RawOutput{}, &GatewayError{Op: "generate", Err: err}
	}

	if resp.UsageMetadata != nil {
		c.log.Debug().
			Str("model", c.model).
			Int32("tokens_input", resp.UsageMetadata.PromptTokenCount).
			Int32("tokens_output", resp.UsageMetadata.CandidatesTokenCount).
			Msg("Model call completed")
	}

	out := RawOutput{}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return out, nil
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil {
			continue
		}
		if part.Text != "" {
			out.Blocks = append(out.Blocks, Block{Kind: BlockText, Text: part.Text})
		} else {
			out.Blocks = append(out.Blocks, Block{Kind: BlockArtifact})
		}
	}
	return out, nil
}
