package openrouter

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"

	"reco-api-go/apierr"
	"reco-api-go/logcolors"
)

// MaxTextLength bounds text-analysis input.
const MaxTextLength = 5000

const textSystemPrompt = `You are a music expert analyzing text to understand its emotional content, themes, and mood. Based on the user's text, provide a detailed analysis that will be used to generate a music playlist.

Analyze the following aspects:
1. Overall mood and emotional tone
2. Themes and subjects discussed
3. Energy level (high, medium, low)
4. Specific emotions expressed
5. Any cultural or temporal references
6. Suggested music genres that would complement the text

Provide your analysis in a structured format that captures the essence of the text for music recommendation purposes.`

const visualSystemPrompt = `You are a visual analysis expert specializing in interpreting images to understand their mood, atmosphere, colors, and emotional content for music playlist generation.

Analyze images focusing on:
1. Overall mood and atmosphere
2. Color palette and its emotional associations
3. Visual themes and subjects
4. Energy level conveyed by the image
5. Time of day, season, or setting implications
6. Artistic style or photographic qualities
7. Any cultural or contextual elements

Provide detailed analysis that captures the visual essence for music recommendation purposes. Focus on translating visual elements into musical characteristics.`

// Validate checks the text-analysis input bounds. Rejection happens
// before any outbound call.
func (in TextAnalysisInput) Validate() error {
	length := utf8.RuneCountInString(in.Text)
	if length < 1 {
		return apierr.Validation("Text is required")
	}
	if length > MaxTextLength {
		return apierr.Validation("Text too long")
	}
	return nil
}

// AnalyzeText builds the analysis prompt from user text and optional
// hints and returns the model's analysis.
func (c *Client) AnalyzeText(ctx context.Context, in TextAnalysisInput) (*AnalysisResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Please analyze this text for music playlist generation:\n\nText: %q\n", in.Text)
	if in.Mood != "" {
		fmt.Fprintf(&b, "User's mood preference: %s\n", in.Mood)
	}
	if in.GenrePreference != "" {
		fmt.Fprintf(&b, "User's genre preference: %s\n", in.GenrePreference)
	}
	b.WriteString("\nProvide a detailed analysis focusing on musical elements that would complement this text.")

	model := c.cfg.OpenRouter.TextModel
	log.Infof("%s Analyzing text (%d chars) with %s", logcolors.LogAnalysis, utf8.RuneCountInString(in.Text), model)

	content, tokens, err := c.complete(ctx, ChatRequest{
		Model: model,
		Messages: []Message{
			{Role: "system", Content: textSystemPrompt},
			{Role: "user", Content: b.String()},
		},
		MaxTokens:   1000,
		Temperature: 0.7,
		TopP:        1,
	}, "Failed to process text")
	if err != nil {
		return nil, err
	}

	return &AnalysisResult{Analysis: content, Model: model, TokensUsed: tokens}, nil
}

// Validate checks the visual-analysis input. Rejection happens before
// any outbound call.
func (in VisualAnalysisInput) Validate() error {
	if in.ImageData == "" {
		return apierr.Validation("Image data is required")
	}
	switch in.ImageType {
	case ImageTypeBase64, ImageTypeURL:
		return nil
	}
	return apierr.Validation(fmt.Sprintf("Invalid image type: %s", in.ImageType))
}

// imageContent formats the image reference for the completion API.
// Bare base64 is wrapped in a jpeg data URL.
func (in VisualAnalysisInput) imageContent() ContentPart {
	url := in.ImageData
	if in.ImageType == ImageTypeBase64 && !strings.HasPrefix(url, "data:") {
		url = "data:image/jpeg;base64," + url
	}
	return ContentPart{Type: "image_url", ImageURL: &ImageURL{URL: url}}
}

// AnalyzeImage sends a multi-part message (text block plus image
// block) to the visual model and returns its analysis. Each part
// carries the type discriminator the API requires.
func (c *Client) AnalyzeImage(ctx context.Context, in VisualAnalysisInput) (*AnalysisResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString("Please analyze this image for music playlist generation. Focus on the visual elements that would translate well to musical characteristics.\n\n")
	if in.Description != "" {
		fmt.Fprintf(&b, "Additional context: %s\n", in.Description)
	}
	if in.MoodPreference != "" {
		fmt.Fprintf(&b, "User's mood preference: %s\n", in.MoodPreference)
	}
	b.WriteString("\nProvide a comprehensive analysis of the visual elements and their musical implications.")

	model := c.cfg.OpenRouter.VisualModel
	log.Infof("%s Analyzing image (%s) with %s", logcolors.LogAnalysis, in.ImageType, model)

	content, tokens, err := c.complete(ctx, ChatRequest{
		Model: model,
		Messages: []Message{
			{Role: "system", Content: visualSystemPrompt},
			{Role: "user", Content: []ContentPart{
				{Type: "text", Text: b.String()},
				in.imageContent(),
			}},
		},
		MaxTokens:   1200,
		Temperature: 0.7,
		TopP:        1,
	}, "Failed to process image")
	if err != nil {
		return nil, err
	}

	return &AnalysisResult{Analysis: content, Model: model, TokensUsed: tokens}, nil
}
