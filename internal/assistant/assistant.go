// Package assistant is the gateway to the Gemini API for the chat
// sidebar and image analysis. Calls are stateless: the caller supplies
// the conversation history, nothing is retried or streamed, and failures
// always come back as displayable fallback text.
package assistant

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"samina/internal/logging"
	"samina/internal/types"
)

// Fallback replies returned whenever the model call fails. Callers can
// render these directly; the assistant never surfaces an error.
const (
	ChatFallback   = "I'm sorry, I'm having trouble connecting right now."
	VisionFallback = "I couldn't analyze the image properly. Please try again."
)

const systemInstruction = "You are Lumina, a helpful and creative AI assistant for a modern blog. You help users with writing inspiration, explaining complex topics, and brainstorming ideas for Art, Science, Tech, and more."

const visionPrompt = "Analyze this image in the context of a high-quality blog post. What are the visual themes, what story does it tell, and what categories (Art, Science, Technology, Cinema, Design, Food) would it fit into? Keep it engaging and insightful."

// modelCaller is the slice of the genai client the assistant uses.
// *genai.Models satisfies it.
type modelCaller interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Assistant wraps a Gemini model behind the two sidebar operations.
type Assistant struct {
	models modelCaller
	model  string
}

// New creates an assistant over the Gemini API.
func New(ctx context.Context, apiKey, model string) (*Assistant, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("assistant API key is required")
	}
	if model == "" {
		model = "gemini-3-pro-preview"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create assistant client: %w", err)
	}

	return &Assistant{models: client.Models, model: model}, nil
}

// Chat sends one user message with the prior conversation and returns
// the model's reply, or the chat fallback on any failure.
func (a *Assistant) Chat(ctx context.Context, message string, history []types.ChatMessage) string {
	contents := buildContents(history)
	contents = append(contents, genai.NewContentFromText(message, genai.RoleUser))

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
	}

	resp, err := a.models.GenerateContent(ctx, a.model, contents, config)
	if err != nil {
		logging.AssistantError("chat failed: %v", err)
		return ChatFallback
	}

	text := resp.Text()
	if text == "" {
		logging.AssistantError("chat returned no text")
		return ChatFallback
	}
	logging.AssistantDebug("chat reply: %d chars", len(text))
	return text
}

// AnalyzeImage asks the model to describe an image for the post view and
// returns its reply, or the vision fallback on any failure.
func (a *Assistant) AnalyzeImage(ctx context.Context, data []byte, mimeType string) string {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(data, mimeType),
			genai.NewPartFromText(visionPrompt),
		}, genai.RoleUser),
	}

	resp, err := a.models.GenerateContent(ctx, a.model, contents, nil)
	if err != nil {
		logging.AssistantError("image analysis failed: %v", err)
		return VisionFallback
	}

	text := resp.Text()
	if text == "" {
		logging.AssistantError("image analysis returned no text")
		return VisionFallback
	}
	return text
}

// buildContents maps conversation turns onto genai contents, dropping
// turns with unknown roles.
func buildContents(history []types.ChatMessage) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, m := range history {
		var role genai.Role
		switch m.Role {
		case types.RoleUser:
			role = genai.RoleUser
		case types.RoleModel:
			role = genai.RoleModel
		default:
			continue
		}
		contents = append(contents, genai.NewContentFromText(m.Text, role))
	}
	return contents
}
