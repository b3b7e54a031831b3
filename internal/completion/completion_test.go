package completion

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"alcyxob/microcycle/internal/config"
)

func newTestClient(m llms.Model) *Client {
	return NewClientWithModel(m, config.CompletionConfig{Retries: 2})
}

type payload struct {
	Name string `json:"name"`
	Sets int    `json:"sets"`
}

func TestClientUnavailableWithoutKey(t *testing.T) {
	client, err := NewClient(config.CompletionConfig{})
	require.NoError(t, err)
	assert.False(t, client.IsAvailable())

	_, err = client.GenerateText(context.Background(), "", []Message{User("hi")})
	assert.ErrorIs(t, err, ErrServiceUnavailable)

	_, err = GenerateStructured[payload](context.Background(), client, "", []Message{User("hi")}, "{}")
	assert.ErrorIs(t, err, ErrServiceUnavailable)
}

func TestGenerateTextTrimsReply(t *testing.T) {
	fake := &ScriptedModel{Replies: []string{"  hello there \n"}}
	client := newTestClient(fake)

	out, err := client.GenerateText(context.Background(), "", []Message{User("hi")})
	require.NoError(t, err)
	assert.Equal(t, "hello there", out)
	assert.Equal(t, 1, fake.Calls)
}

func TestGenerateTextEmptyReply(t *testing.T) {
	fake := &ScriptedModel{Replies: []string{"   "}}
	client := newTestClient(fake)

	_, err := client.GenerateText(context.Background(), "", []Message{User("hi")})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestGenerateStructuredParsesFencedJSON(t *testing.T) {
	fake := &ScriptedModel{Replies: []string{
		"Here you go:\n```json\n{\"name\": \"bench press\", \"sets\": 3}\n```",
	}}
	client := newTestClient(fake)

	got, err := GenerateStructured[payload](context.Background(), client, "", []Message{User("plan")}, `{"name": string, "sets": int}`)
	require.NoError(t, err)
	assert.Equal(t, payload{Name: "bench press", Sets: 3}, got)
	assert.Equal(t, 1, fake.Calls)
}

func TestGenerateStructuredRepairsBrokenJSON(t *testing.T) {
	// Trailing comma: invalid JSON that the repair pass fixes without a
	// second completion.
	fake := &ScriptedModel{Replies: []string{`{"name": "squat", "sets": 5,}`}}
	client := newTestClient(fake)

	got, err := GenerateStructured[payload](context.Background(), client, "", []Message{User("plan")}, "{}")
	require.NoError(t, err)
	assert.Equal(t, "squat", got.Name)
	assert.Equal(t, 1, fake.Calls)
}

func TestGenerateStructuredCorrectiveRetry(t *testing.T) {
	// First reply is valid JSON of the wrong shape, which no repair can
	// save; the client must feed the error back and ask again.
	fake := &ScriptedModel{Replies: []string{
		`{"name": "row", "sets": "lots"}`,
		`{"name": "row", "sets": 4}`,
	}}
	client := newTestClient(fake)

	got, err := GenerateStructured[payload](context.Background(), client, "", []Message{User("plan")}, "{}")
	require.NoError(t, err)
	assert.Equal(t, 4, got.Sets)
	require.Equal(t, 2, fake.Calls)

	// The second request must carry the corrective turn.
	second := fake.Seen[1]
	require.Len(t, second, 3)
	assert.Equal(t, llms.ChatMessageTypeAI, second[1].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, second[2].Role)
}

func TestGenerateStructuredExhaustsRetries(t *testing.T) {
	bad := `{"name": "row", "sets": "lots"}`
	fake := &ScriptedModel{Replies: []string{bad, bad, bad}}
	client := newTestClient(fake)

	_, err := GenerateStructured[payload](context.Background(), client, "", []Message{User("plan")}, "{}")
	var malformed *MalformedOutputError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, 3, malformed.Attempts)
	assert.Equal(t, bad, malformed.Raw)
	assert.Equal(t, 3, fake.Calls)
}

func TestGenerateStructuredFallsBackWhenJSONModeRejected(t *testing.T) {
	fake := &ScriptedModel{
		JSONModeErr: errors.New("response_format is not supported for this model"),
		Replies:     []string{"", `{"name": "deadlift", "sets": 3}`},
	}
	client := newTestClient(fake)

	got, err := GenerateStructured[payload](context.Background(), client, "", []Message{User("plan")}, "{}")
	require.NoError(t, err)
	assert.Equal(t, "deadlift", got.Name)
	// One rejected JSON-mode call plus one plain-mode call.
	assert.Equal(t, 2, fake.Calls)
}

func TestGenerateStructuredAuthErrorNotRetried(t *testing.T) {
	fake := &ScriptedModel{Errs: []error{errors.New("401 Unauthorized: invalid api key")}}
	client := newTestClient(fake)

	_, err := GenerateStructured[payload](context.Background(), client, "", []Message{User("plan")}, "{}")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, 1, fake.Calls)
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "fenced block with language tag",
			input: "sure:\n```json\n{\"a\": 1}\n```\ndone",
			want:  `{"a": 1}`,
		},
		{
			name:  "bare object in prose",
			input: `The plan is {"a": {"b": 2}} as requested.`,
			want:  `{"a": {"b": 2}}`,
		},
		{
			name:  "array",
			input: `[1, 2, 3] trailing words`,
			want:  `[1, 2, 3]`,
		},
		{
			name:  "braces inside string values",
			input: `{"note": "use {heavy} weight"}`,
			want:  `{"note": "use {heavy} weight"}`,
		},
		{
			name:    "no json at all",
			input:   "I cannot help with that.",
			wantErr: true,
		},
		{
			name:    "unbalanced braces",
			input:   `{"a": 1`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
