package service

import (
	"fmt"
	"strings"
)

const systemPromptResearchAssistant = "You are a research assistant that analyzes academic papers. You answer concisely and never invent citations."

const summaryPromptTemplate = `Summarize the following section of a research paper. Keep the key claims, methods and findings. Respond with the summary only.

%s`

const synthesisPromptTemplate = `Below are summaries of %d research papers, separated by blank lines.

%s

Based on all of them, provide:
1. One common theme or connection across the papers.
2. %d to %d hypotheses that build on the combined findings.
3. One proposed experiment for each hypothesis.

Keep the whole answer under %d words.`

func summaryPrompt(text string) string {
	return fmt.Sprintf(summaryPromptTemplate, text)
}

func synthesisPrompt(summaries []string, minHypotheses, maxHypotheses, maxWords int) string {
	joined := strings.Join(summaries, "\n\n")
	return fmt.Sprintf(synthesisPromptTemplate, len(summaries), joined, minHypotheses, maxHypotheses, maxWords)
}
