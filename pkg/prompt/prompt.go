package prompt

import (
	"strings"

	"github.com/Adithya-charan/docuExtract/internal/models"
	"github.com/Adithya-charan/docuExtract/pkg/locale"
)

const Placeholder = "{{LANGUAGE}}"

// SystemInstruction describes the structured output the analysis model must
// produce. Placeholder occurs twice and both are substituted.
const SystemInstruction = `You are a document structure analyst. Read the supplied document and produce its logical outline.

Write every heading, content excerpt, summary and issue in {{LANGUAGE}}.

Respond with a single JSON object and nothing else:
{
  "hierarchy": [
    {
      "id": "unique id within this response",
      "heading": "section heading",
      "level": 1,
      "content": "the section's text, condensed",
      "nodeSummary": "one sentence summary",
      "complexity": "low | medium | high",
      "intent": "concept | procedure | warning | definition | summary | legal | general",
      "children": []
    }
  ],
  "summary": "overall summary of the document",
  "qualityScore": 0,
  "issues": ["structural or content problems found"],
  "metadata": { "confidence": 0.0, "tablesDetected": 0 }
}

Rules:
- level starts at 1 for top-level sections and increases by one per nesting depth.
- children preserve document order.
- qualityScore is an integer from 0 to 100; confidence is a number from 0 to 1.
- All natural-language values must be in {{LANGUAGE}}, even when the source document uses another language.`

type Prompt struct {
	System  string
	Content *models.Content
}

// Render substitutes the display name of code into every placeholder.
func Render(template, code string) string {
	return strings.ReplaceAll(template, Placeholder, locale.Name(code))
}

func Assemble(content *models.Content, code string) Prompt {
	return Prompt{
		System:  Render(SystemInstruction, code),
		Content: content,
	}
}
