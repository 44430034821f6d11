package extract

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"time"

	"snagaudit/pkg/types"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIModel implements Model against the OpenAI API.
type OpenAIModel struct {
	client             openai.Client
	extractionModel    string
	visionModel        string
	transcriptionModel string
}

func NewOpenAIModel(config *types.Config) (*OpenAIModel, error) {
	if config.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(config.OpenAIAPIKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(time.Duration(config.LLMTimeoutSec) * time.Second),
	}
	if config.OpenAIBaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.OpenAIBaseURL))
	}

	return &OpenAIModel{
		client:             openai.NewClient(opts...),
		extractionModel:    config.ExtractionModel,
		visionModel:        config.VisionModel,
		transcriptionModel: config.TranscriptionModel,
	}, nil
}

func (m *OpenAIModel) Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error) {
	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	transcription, err := m.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:  openai.File(audio, filename, contentType),
		Model: openai.AudioModel(m.transcriptionModel),
	})
	if err != nil {
		return "", fmt.Errorf("failed to transcribe %s: %w", filename, err)
	}

	return transcription.Text, nil
}

func (m *OpenAIModel) Complete(ctx context.Context, system, user string) (string, error) {
	completion, err := m.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(m.extractionModel),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(0.2),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", nil
	}

	return completion.Choices[0].Message.Content, nil
}

func (m *OpenAIModel) CompleteWithImages(ctx context.Context, prompt string, photos []Photo) (string, error) {
	parts := make([]openai.ChatCompletionContentPartUnionParam, 0, len(photos)+1)
	parts = append(parts, openai.TextContentPart(prompt))
	for _, photo := range photos {
		contentType := photo.ContentType
		if contentType == "" {
			contentType = "image/jpeg"
		}
		parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL: "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(photo.Data),
		}))
	}

	completion, err := m.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(m.visionModel),
		Messages:            []openai.ChatCompletionMessageParamUnion{openai.UserMessage(parts)},
		MaxCompletionTokens: openai.Int(500),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create vision completion: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", nil
	}

	return completion.Choices[0].Message.Content, nil
}
