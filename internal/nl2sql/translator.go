package nl2sql

import "context"

// Result carries the model output exactly as received.
type Result struct {
	SQL      string `json:"sql"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

type Translator interface {
	Translate(ctx context.Context, prompt string) (Result, error)
}
