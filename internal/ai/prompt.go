package ai

import "fmt"

const summaryPrompt = "Please summarize the following meeting transcript into %d key bullet points:\n\n%s"

// Options are the request parameters shared by all summarisers
type Options struct {
	Model        string
	Temperature  float32
	MaxTokens    int
	BulletPoints int
}

func (o Options) withDefaults(model string) Options {
	if o.Model == "" {
		o.Model = model
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = 500
	}
	if o.BulletPoints <= 0 {
		o.BulletPoints = 5
	}
	return o
}

// BuildSummaryPrompt returns the single user message sent to the model
func BuildSummaryPrompt(transcript string, bullets int) string {
	if bullets <= 0 {
		bullets = 5
	}
	return fmt.Sprintf(summaryPrompt, bullets, transcript)
}
