package lesson

import "github.com/xeipuuv/gojsonschema"

const recordSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["id", "type", "content", "dateCreated"],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "title": {"type": "string"},
    "subtitle": {"type": "string"},
    "content": {"type": "string"},
    "type": {"enum": ["NOTES_SIMPLE", "NOTES_PREMIUM", "PDF_NOTES", "VIDEO_LINK", "MCQ_SIMPLE"]},
    "dateCreated": {"type": "string", "format": "date-time"},
    "subjectName": {"type": "string"},
    "videoLinks": {
      "type": "array",
      "maxItems": 10,
      "items": {"type": "string"}
    },
    "mcqRaw": {"type": "string"},
    "mcqData": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["question", "options", "correctAnswer"],
        "properties": {
          "question": {"type": "string"},
          "options": {
            "type": "array",
            "minItems": 4,
            "maxItems": 4,
            "items": {"type": "string"}
          },
          "correctAnswer": {"type": "integer", "minimum": 0, "maximum": 3},
          "explanation": {"type": "string"}
        }
      }
    }
  },
  "allOf": [
    {
      "if": {"properties": {"type": {"const": "VIDEO_LINK"}}},
      "then": {"required": ["videoLinks"], "properties": {"videoLinks": {"minItems": 1}}}
    },
    {
      "if": {"properties": {"type": {"const": "MCQ_SIMPLE"}}},
      "then": {"required": ["mcqData"], "properties": {"mcqData": {"minItems": 1}}}
    }
  ]
}`

var recordSchema = mustCompileSchema(recordSchemaJSON)

func mustCompileSchema(src string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic("lesson: invalid record schema: " + err.Error())
	}
	return schema
}
