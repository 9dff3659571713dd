// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package prompt

import (
	"fmt"
	"strings"

	"askdata/cli/internal/classify"
	"askdata/cli/internal/llm"
)

// Framing is the domain context of explanations.
type Framing struct {
	// Subject names what a row describes ("customer").
	Subject        string   `yaml:"subject"`
	ChartAudience  string   `yaml:"chart_audience"`
	ValueAudience  string   `yaml:"value_audience"`
	ChartFocus     []string `yaml:"chart_focus"`
	SubjectProfile []string `yaml:"subject_profile"`
}

const explainSystem = "You are a data analyst who explains results in plain language to people without a technical background."

const noCode = "Do not provide any code in or after the explanation."

// BuildExplanation builds the explanation request for a classified result:
// the chart template for charts, the value template otherwise.
func BuildExplanation(c classify.Classification, f Framing) llm.Request {
	if c.Kind == classify.KindChart {
		return llm.Request{System: explainSystem, User: chartPrompt(c.Payload(), f)}
	}
	return llm.Request{System: explainSystem, User: valuePrompt(c.Payload(), f)}
}

func chartPrompt(description string, f Framing) string {
	var b strings.Builder
	if f.ChartAudience != "" {
		b.WriteString(strings.TrimSpace(f.ChartAudience))
		b.WriteString("\n\n")
	}
	b.WriteString("Analyze the following chart, given as its structural description:\n")
	b.WriteString(description)
	b.WriteString("\n\nProvide insights focusing on:\n")
	focus := f.ChartFocus
	if len(focus) == 0 {
		focus = []string{"The main patterns and trends shown.", "Any significant peaks or drops."}
	}
	for _, line := range focus {
		fmt.Fprintf(&b, "- %s\n", line)
	}

	subject := f.Subject
	if subject == "" {
		subject = "record"
	}
	fmt.Fprintf(&b, "\nAdditionally, provide a short description of what the typical %s looks like based on the data", subject)
	if len(f.SubjectProfile) > 0 {
		b.WriteString(":\n")
		for _, line := range f.SubjectProfile {
			fmt.Fprintf(&b, "- %s\n", line)
		}
	} else {
		b.WriteString(".\n")
	}
	b.WriteString("\n")
	b.WriteString(noCode)
	return b.String()
}

func valuePrompt(content string, f Framing) string {
	var b strings.Builder
	if f.ValueAudience != "" {
		b.WriteString(strings.TrimSpace(f.ValueAudience))
		b.WriteString("\n\n")
	}
	b.WriteString("Analyze the following output:\n")
	b.WriteString(content)
	b.WriteString("\n\nProvide insights focusing on:\n")
	b.WriteString("- Key observations and their significance.\n")
	b.WriteString("- Any notable trends or patterns and their implications.\n")
	if content == classify.MissingMarker {
		b.WriteString("- Say plainly that no result was produced and suggest how the question could be rephrased.\n")
	}
	b.WriteString("\n")
	b.WriteString(noCode)
	return b.String()
}
