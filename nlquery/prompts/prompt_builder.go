package prompts

import (
	"fmt"
	"strings"
)

// Vocabulary lists the values the model may choose from.
type Vocabulary struct {
	Years      []string
	Quotas     []string
	Colleges   []string
	Courses    []string
	Categories []string
}

// PromptBuilder handles the construction of prompts for the LLM
type PromptBuilder struct {
	baseContext string
	examples    string
	vocab       Vocabulary
}

func NewPromptBuilder(vocab Vocabulary) *PromptBuilder {
	return &PromptBuilder{
		baseContext: FilterContext,
		examples:    FilterExamples,
		vocab:       vocab,
	}
}

// BuildFilterPrompt asks for a filter object answering question.
func (pb *PromptBuilder) BuildFilterPrompt(question string) string {
	return fmt.Sprintf(`You translate questions about counselling admission records into a JSON filter. Follow these rules strictly:

1. Reply with the JSON object only, no commentary.
2. Only use values from the allowed lists below, spelled exactly as listed.
3. Leave a field at its default when the question does not mention it.

%s

Allowed values:
- years: %s
- quotas: %s
- categories: %s
- colleges:
%s
- courses:
%s

%s

Now produce the filter for this question: %s`,
		pb.baseContext,
		joinInline(pb.vocab.Years),
		joinInline(pb.vocab.Quotas),
		joinInline(pb.vocab.Categories),
		joinLines(pb.vocab.Colleges),
		joinLines(pb.vocab.Courses),
		pb.examples,
		question)
}

// BuildErrorPrompt creates a prompt for generating user-friendly error messages
func (pb *PromptBuilder) BuildErrorPrompt(question string, err error) string {
	return fmt.Sprintf(`Generate a user-friendly error message for this failed search:

Question: "%s"

Error: %v

Requirements:
1. Explain the issue in simple terms
2. Suggest how to rephrase the question, e.g. by naming a rank range, year or course
3. Keep the message concise and helpful

Error Message:`, question, err)
}

func joinInline(values []string) string {
	if len(values) == 0 {
		return "(none)"
	}
	return strings.Join(values, ", ")
}

func joinLines(values []string) string {
	if len(values) == 0 {
		return "  (none)"
	}
	var b strings.Builder
	for i, v := range values {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("  * ")
		b.WriteString(v)
	}
	return b.String()
}
