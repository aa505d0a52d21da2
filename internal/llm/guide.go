package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

const guideSystemPrompt = `You write gift guides for parents shopping for children.
Reply with a single JSON object and nothing else, using exactly these keys:
"title", "description", "content", "keywords", "meta_title", "meta_description".
"content" is the article body in Markdown. "keywords" is an array of 5 to 10 search phrases.
"meta_title" is at most 60 characters and "meta_description" at most 155.`

// GuideRequest describes the guide an editor wants written.
type GuideRequest struct {
	Topic        string   `json:"topic"`
	AgeRange     string   `json:"age_range,omitempty"`
	Category     string   `json:"category,omitempty"`
	Keywords     []string `json:"keywords,omitempty"`
	ProductNames []string `json:"product_names,omitempty"`
}

// GuideDraft is the structured copy returned by the model.
type GuideDraft struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Content         string   `json:"content"`
	Keywords        []string `json:"keywords"`
	MetaTitle       string   `json:"meta_title"`
	MetaDescription string   `json:"meta_description"`
}

// GuidePrompt renders the user prompt for req.
func GuidePrompt(req GuideRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a gift guide about: %s\n", req.Topic)
	if req.AgeRange != "" {
		fmt.Fprintf(&b, "Age range: %s\n", req.AgeRange)
	}
	if req.Category != "" {
		fmt.Fprintf(&b, "Category: %s\n", req.Category)
	}
	if len(req.Keywords) > 0 {
		fmt.Fprintf(&b, "Target keywords: %s\n", strings.Join(req.Keywords, ", "))
	}
	if len(req.ProductNames) > 0 {
		b.WriteString("Feature these products:\n")
		for _, name := range req.ProductNames {
			fmt.Fprintf(&b, "- %s\n", name)
		}
	}
	return b.String()
}

// GenerateGuide asks the model for guide copy and decodes its JSON reply.
func (c *Client) GenerateGuide(ctx context.Context, req GuideRequest) (*GuideDraft, error) {
	text, err := c.Complete(ctx, guideSystemPrompt, GuidePrompt(req))
	if err != nil {
		return nil, err
	}
	return ParseGuideDraft(text)
}

// ParseGuideDraft pulls the first JSON object out of text, tolerating code
// fences and surrounding prose.
func ParseGuideDraft(text string) (*GuideDraft, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in model reply")
	}

	var draft GuideDraft
	if err := json.Unmarshal([]byte(text[start:end+1]), &draft); err != nil {
		return nil, fmt.Errorf("failed to decode guide JSON: %w", err)
	}
	if strings.TrimSpace(draft.Title) == "" {
		return nil, fmt.Errorf("guide JSON has no title")
	}
	return &draft, nil
}
