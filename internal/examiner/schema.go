package examiner

import (
	"encoding/json"
	"fmt"
)

// responseSchemaTemplate is the JSON-schema output contract attached to
// every chat request. The first %d is the minimum number of result
// entries (the batch size), the second and third pin the sentence list
// to exactly the expected group size.
const responseSchemaTemplate = `{
  "type": "object",
  "required": ["results"],
  "properties": {
    "results": {
      "type": "array",
      "minItems": %d,
      "items": {
        "type": "object",
        "required": ["word", "overall", "sentences"],
        "properties": {
          "word": {"type": "string"},
          "overall": {
            "type": "object",
            "required": ["pass", "notes"],
            "properties": {
              "pass": {"type": "boolean"},
              "notes": {"type": "array", "items": {"type": "string"}}
            }
          },
          "sentences": {
            "type": "array",
            "minItems": %d,
            "maxItems": %d,
            "items": {
              "type": "object",
              "required": ["index", "row_index", "pass", "issues", "scores"],
              "properties": {
                "index": {"type": "integer", "minimum": 1, "maximum": %d},
                "row_index": {"type": "integer", "minimum": 2},
                "pass": {"type": "boolean"},
                "issues": {"type": "array", "items": {"type": "string"}},
                "scores": {
                  "type": "object",
                  "required": ["accuracy", "clarity", "educational_usefulness"],
                  "properties": {
                    "accuracy": {"type": "integer", "minimum": 1, "maximum": 5},
                    "clarity": {"type": "integer", "minimum": 1, "maximum": 5},
                    "educational_usefulness": {"type": "integer", "minimum": 1, "maximum": 5}
                  }
                }
              }
            }
          }
        }
      }
    }
  }
}`

// responseSchema builds the output contract for a batch of minWords
// words with sentencesPerWord sentences each.
func responseSchema(minWords, sentencesPerWord int) json.RawMessage {
	s := fmt.Sprintf(responseSchemaTemplate,
		minWords, sentencesPerWord, sentencesPerWord, sentencesPerWord)
	return json.RawMessage(s)
}
