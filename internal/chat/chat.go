// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package chat implements the conversational assistant: one model call per
// question, grounded in the current unfiltered trial collection and the
// running conversation history.
package chat

import (
	"bytes"
	"context"
	"fmt"
	"text/template"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/trialscout/internal/ai"
	"github.com/pdiddy/trialscout/pkg/types"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// NewMessage builds a uuid-tagged conversation message.
func NewMessage(role, content string) types.ChatMessage {
	return types.ChatMessage{
		ID:      uuid.NewString(),
		Role:    role,
		Content: content,
		At:      time.Now().UTC(),
	}
}

// contextCap bounds how many trials are inlined into the prompt.
const contextCap = 25

var replyPromptTmpl = template.Must(template.New("reply").Parse(`You are a clinical research assistant. Answer the user's question using the trial results below. Be concise and cite registry ids (NCT numbers) when referring to specific trials. If the results do not contain the answer, say so.

Current results:
{{range .Trials}}- {{.NCTID}}: {{.Title}} ({{.Status}}{{if .Sponsor}}, sponsor {{.Sponsor}}{{end}})
{{end}}
{{- if .History}}
Conversation so far:
{{range .History}}{{.Role}}: {{.Content}}
{{end}}
{{- end}}
user: {{.Question}}
`))

// Assistant answers questions over search results via one AI call per turn.
type Assistant struct {
	ai ai.Client
}

// New builds an assistant over the given model client.
func New(aiClient ai.Client) *Assistant {
	return &Assistant{ai: aiClient}
}

// Reply answers question against the given trials and history.
func (a *Assistant) Reply(ctx context.Context, question string, trials []types.Trial, history []types.ChatMessage) (string, error) {
	if len(trials) > contextCap {
		trials = trials[:contextCap]
	}

	var buf bytes.Buffer
	data := struct {
		Question string
		Trials   []types.Trial
		History  []types.ChatMessage
	}{question, trials, history}
	if err := replyPromptTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering assistant prompt: %w", err)
	}

	reply, err := a.ai.Generate(ctx, buf.String())
	if err != nil {
		return "", fmt.Errorf("assistant: %w", err)
	}
	return reply, nil
}
