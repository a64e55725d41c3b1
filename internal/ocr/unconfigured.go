package ocr

import "context"

// Unconfigured stands in for a Client whose construction failed. Every call
// returns the original error, so jobs fail with the configuration failure kind
// instead of the process refusing to start.
type Unconfigured struct {
	Err error
}

func (u Unconfigured) RecognizeText(context.Context, []byte, string) (string, error) {
	return "", u.Err
}
