package model

import (
	"bytes"
	"encoding/json"
)

// AnswerKind tells which column an answer value belongs in.
type AnswerKind int

const (
	AnswerText AnswerKind = iota
	AnswerNumber
)

// AnswerValue is the classified form of one submitted answer value.
// Number is meaningful only when Kind is AnswerNumber, Text only when
// Kind is AnswerText.
type AnswerValue struct {
	Kind   AnswerKind
	Number float64
	Text   string
}

// ClassifyAnswer inspects the shape of a raw JSON value and picks its
// destination column: numbers go to the numeric column, everything
// else to the text column. Booleans render as "true"/"false", strings
// are kept verbatim, arrays/objects/null as compact JSON.
func ClassifyAnswer(raw json.RawMessage) (AnswerValue, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return AnswerValue{}, err
	}

	switch v := value.(type) {
	case json.Number:
		n, err := v.Float64()
		if err != nil {
			return AnswerValue{}, err
		}
		return AnswerValue{Kind: AnswerNumber, Number: n}, nil
	case string:
		return AnswerValue{Kind: AnswerText, Text: v}, nil
	case bool:
		if v {
			return AnswerValue{Kind: AnswerText, Text: "true"}, nil
		}
		return AnswerValue{Kind: AnswerText, Text: "false"}, nil
	case nil:
		return AnswerValue{Kind: AnswerText, Text: "null"}, nil
	default:
		// arrays and objects
		text, err := json.Marshal(v)
		if err != nil {
			return AnswerValue{}, err
		}
		return AnswerValue{Kind: AnswerText, Text: string(text)}, nil
	}
}
