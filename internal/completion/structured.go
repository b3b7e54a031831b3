package completion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kaptinlin/jsonrepair"
)

// GenerateStructured requests a completion and parses it into T. It lives at
// package level because Go methods cannot introduce type parameters.
//
// Recovery ladder, in order:
//  1. The request is made in JSON mode. If the backend rejects it, the same
//     turn is retried once without JSON mode.
//  2. The reply is scanned for a JSON document (fences, surrounding prose).
//  3. Output that almost parses goes through a mechanical repair pass.
//  4. A corrective follow-up turn carries the parse error and the schema
//     hint back to the model, up to the configured retry count.
//
// Authentication and quota errors are returned immediately and never
// retried. Exhausted retries surface as *MalformedOutputError.
func GenerateStructured[T any](ctx context.Context, c *Client, model string, msgs []Message, schemaHint string, opts ...Option) (T, error) {
	var zero T
	if !c.IsAvailable() {
		return zero, ErrServiceUnavailable
	}

	o := c.defaults
	for _, opt := range opts {
		opt(&o)
	}

	conversation := make([]Message, len(msgs))
	copy(conversation, msgs)

	var raw string
	var lastParseErr error
	for attempt := 0; attempt <= o.Retries; attempt++ {
		if attempt > 0 {
			c.observeRetry()
		}

		var err error
		raw, err = c.generate(ctx, model, conversation, o, true)
		if err != nil && !fatal(err) && !errors.Is(err, ErrEmptyResponse) {
			// Some backends refuse JSON-mode requests outright. Retry the
			// same turn once in plain mode before treating the transport
			// error as final.
			c.observeRetry()
			raw, err = c.generate(ctx, model, conversation, o, false)
		}
		if err != nil {
			return zero, err
		}

		value, parseErr := decode[T](raw)
		if parseErr == nil {
			return value, nil
		}
		lastParseErr = parseErr

		conversation = append(conversation,
			Assistant(raw),
			User(fmt.Sprintf(
				"Your previous reply was not valid JSON for the requested schema: %v. Respond again with ONLY a JSON document matching this schema: %s",
				parseErr, schemaHint)),
		)
	}

	return zero, &MalformedOutputError{Attempts: o.Retries + 1, Raw: raw, LastErr: lastParseErr}
}

// decode extracts a JSON document from raw model output and unmarshals it,
// attempting a repair pass before giving up.
func decode[T any](raw string) (T, error) {
	var out T

	jsonStr, err := ExtractJSON(raw)
	if err != nil {
		// No recognizable document at all. Repair sometimes still salvages
		// truncated or quote-broken output.
		repaired, repErr := jsonrepair.JSONRepair(raw)
		if repErr != nil {
			return out, err
		}
		jsonStr = repaired
	}

	if err := json.Unmarshal([]byte(jsonStr), &out); err != nil {
		repaired, repErr := jsonrepair.JSONRepair(jsonStr)
		if repErr != nil {
			return out, err
		}
		if err := json.Unmarshal([]byte(repaired), &out); err != nil {
			return out, err
		}
	}
	return out, nil
}
