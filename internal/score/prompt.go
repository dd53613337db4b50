// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package score

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/idea-engine/pkg/types"
)

// maxPromptBodyLen bounds how much posting body goes into the prompt, in runes.
const maxPromptBodyLen = 2000

// BuildPrompt renders the analysis request for one idea. The model is asked
// to answer with a single JSON object; ParseAnalysis extracts it from
// whatever surrounding prose the model adds.
func BuildPrompt(idea types.CanonicalIdea) string {
	primary := idea.Primary.Raw

	body := primary.Body
	if utf8.RuneCountInString(body) > maxPromptBodyLen {
		runes := []rune(body)
		body = string(runes[:maxPromptBodyLen])
	}

	sources := make([]string, len(idea.Sources))
	for i, s := range idea.Sources {
		sources[i] = string(s)
	}

	return fmt.Sprintf(`Analyze the following business/product idea:

Title: %s
Description: %s
Seen on: %s

Respond ONLY with a JSON object containing these fields:
{
  "score": <0-100 rating based on originality, feasibility, and market potential>,
  "tags": [<up to 3 tags/categories describing the idea>],
  "summary": <concise one or two sentence synthesis>,
  "difficulty": <"low", "medium", or "high">,
  "market_potential": <"niche", "moderate", or "large">,
  "insight": <short analysis of the business potential and suggestions>
}
`, primary.Title, body, strings.Join(sources, ", "))
}
