package evaluation

import (
	"encoding/json"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const evaluationContract = `{
  "type": "object",
  "required": ["feedback", "nextQuestion"],
  "properties": {
    "feedback": {"type": "string"},
    "nextQuestion": {"type": "string"}
  }
}`

var evaluationValidator = jsonschema.MustCompileString("evaluation_response.json", evaluationContract)

// parseEvaluation validates raw model output against the evaluation contract.
// Extra keys are ignored; blank fields count as missing.
func parseEvaluation(raw string) (Result, error) {
	content := cleanJSONResponse(raw)

	var doc interface{}
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return Result{}, &MalformedResponseError{Op: opEvaluate, Reason: "response is not valid JSON", Raw: raw}
	}
	if err := evaluationValidator.Validate(doc); err != nil {
		return Result{}, &MalformedResponseError{Op: opEvaluate, Reason: err.Error(), Raw: raw}
	}

	obj := doc.(map[string]interface{})
	result := Result{
		Feedback:     strings.TrimSpace(obj["feedback"].(string)),
		NextQuestion: strings.TrimSpace(obj["nextQuestion"].(string)),
	}
	switch {
	case result.Feedback == "":
		return Result{}, &MalformedResponseError{Op: opEvaluate, Reason: "feedback is blank", Raw: raw}
	case result.NextQuestion == "":
		return Result{}, &MalformedResponseError{Op: opEvaluate, Reason: "nextQuestion is blank", Raw: raw}
	}
	return result, nil
}
