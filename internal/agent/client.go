// Copyright (c) 2026 Forgecrew Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package agent

import (
	"context"
	"fmt"

	"github.com/sst/opencode-sdk-go"
	"github.com/sst/opencode-sdk-go/option"
)

// Client wraps the OpenCode SDK client and implements Invoker. One client is
// shared by every agent in the crew; each invocation runs in its own session
// so a failed task cannot poison a later one.
type Client struct {
	sdk     *opencode.Client
	baseURL string
}

// NewClient creates a client connected to a local opencode serve instance.
func NewClient(baseURL string) *Client {
	sdk := opencode.NewClient(
		option.WithBaseURL(baseURL),
		// No API key needed for local connections
	)

	return &Client{
		sdk:     sdk,
		baseURL: baseURL,
	}
}

// GetBaseURL returns the base URL this client is connected to
func (c *Client) GetBaseURL() string {
	return c.baseURL
}

// Invoke sends the assembled context text to the generation server on behalf
// of the given agent and returns the produced output.
func (c *Client) Invoke(ctx context.Context, desc *Descriptor, contextText string) (*Result, error) {
	if desc.Params.Timeout > 0 {
		if _, ok := ctx.Deadline(); !ok {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, desc.Params.Timeout)
			defer cancel()
		}
	}

	session, err := c.sdk.Session.New(ctx, opencode.SessionNewParams{
		Title: opencode.F(fmt.Sprintf("Agent: %s", desc.Role)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	parts := []opencode.SessionPromptParamsPartUnion{
		opencode.TextPartInputParam{
			Type: opencode.F(opencode.TextPartInputTypeText),
			Text: opencode.F(desc.Prompt(contextText)),
		},
	}

	promptParams := opencode.SessionPromptParams{
		Parts: opencode.F(parts),
		Agent: opencode.F("build"),
	}

	if desc.Params.Model != "" {
		promptParams.Model = opencode.F(opencode.SessionPromptParamsModel{
			ModelID: opencode.F(desc.Params.Model),
		})
	}

	message, err := c.sdk.Session.Prompt(ctx, session.ID, promptParams)
	if err != nil {
		return nil, fmt.Errorf("failed to send prompt: %w", err)
	}

	var output string
	for _, part := range message.Parts {
		if part.Type == opencode.PartTypeText {
			output += part.Text
		}
	}

	if desc.Params.MaxOutputChars > 0 && len(output) > desc.Params.MaxOutputChars {
		output = output[:desc.Params.MaxOutputChars]
	}

	return &Result{
		Output:    output,
		Success:   true,
		SessionID: session.ID,
	}, nil
}
