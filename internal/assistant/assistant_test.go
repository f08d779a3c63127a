package assistant

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"samina/internal/types"
)

// stubModels records the last call and replies with a canned response.
type stubModels struct {
	lastModel    string
	lastContents []*genai.Content
	lastConfig   *genai.GenerateContentConfig

	reply string
	err   error
}

func (s *stubModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	s.lastModel = model
	s.lastContents = contents
	s.lastConfig = config
	if s.err != nil {
		return nil, s.err
	}
	return textResponse(s.reply), nil
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{{Text: text}}}},
		},
	}
}

func newStubbed(stub *stubModels) *Assistant {
	return &Assistant{models: stub, model: "gemini-3-pro-preview"}
}

func TestChat_SendsHistoryThenMessage(t *testing.T) {
	stub := &stubModels{reply: "Try a series on kinetic sculpture."}
	a := newStubbed(stub)

	history := []types.ChatMessage{
		{Role: types.RoleUser, Text: "Give me a blog idea"},
		{Role: types.RoleModel, Text: "What topic interests you?"},
	}
	got := a.Chat(context.Background(), "Something about art", history)

	assert.Equal(t, "Try a series on kinetic sculpture.", got)
	assert.Equal(t, "gemini-3-pro-preview", stub.lastModel)
	require.Len(t, stub.lastContents, 3)
	assert.Equal(t, genai.RoleUser, stub.lastContents[0].Role)
	assert.Equal(t, genai.RoleModel, stub.lastContents[1].Role)
	assert.Equal(t, "Something about art", stub.lastContents[2].Parts[0].Text)
	require.NotNil(t, stub.lastConfig)
	require.NotNil(t, stub.lastConfig.SystemInstruction)
	assert.Contains(t, stub.lastConfig.SystemInstruction.Parts[0].Text, "You are Lumina")
}

func TestChat_FailureReturnsFallback(t *testing.T) {
	a := newStubbed(&stubModels{err: errors.New("quota exceeded")})
	got := a.Chat(context.Background(), "hello", nil)
	assert.Equal(t, ChatFallback, got)
}

func TestChat_EmptyReplyReturnsFallback(t *testing.T) {
	a := newStubbed(&stubModels{reply: ""})
	got := a.Chat(context.Background(), "hello", nil)
	assert.Equal(t, ChatFallback, got)
}

func TestChat_SkipsUnknownRoles(t *testing.T) {
	stub := &stubModels{reply: "ok"}
	a := newStubbed(stub)

	a.Chat(context.Background(), "hi", []types.ChatMessage{
		{Role: "system", Text: "should be dropped"},
		{Role: types.RoleUser, Text: "kept"},
	})

	require.Len(t, stub.lastContents, 2)
	assert.Equal(t, "kept", stub.lastContents[0].Parts[0].Text)
}

func TestAnalyzeImage_SendsInlineData(t *testing.T) {
	stub := &stubModels{reply: "A moody still life."}
	a := newStubbed(stub)

	data := []byte{0xFF, 0xD8, 0xFF}
	got := a.AnalyzeImage(context.Background(), data, "image/jpeg")

	assert.Equal(t, "A moody still life.", got)
	require.Len(t, stub.lastContents, 1)
	parts := stub.lastContents[0].Parts
	require.Len(t, parts, 2)
	require.NotNil(t, parts[0].InlineData)
	assert.Equal(t, "image/jpeg", parts[0].InlineData.MIMEType)
	assert.Equal(t, data, parts[0].InlineData.Data)
	assert.Contains(t, parts[1].Text, "Analyze this image")
}

func TestAnalyzeImage_FailureReturnsFallback(t *testing.T) {
	a := newStubbed(&stubModels{err: errors.New("bad image")})
	got := a.AnalyzeImage(context.Background(), []byte{1}, "image/png")
	assert.Equal(t, VisionFallback, got)
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(context.Background(), "", "gemini-3-pro-preview")
	assert.Error(t, err)
}
