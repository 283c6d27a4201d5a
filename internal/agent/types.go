// Copyright (c) 2026 Forgecrew Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package agent

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Capability is a side-effecting operation an agent is permitted to invoke.
type Capability string

const (
	CapWriteFile     Capability = "write-file"
	CapReadFile      Capability = "read-file"
	CapListDirectory Capability = "list-directory"
)

// Params holds the generation knobs for one agent. Immutable for the agent's
// lifetime.
type Params struct {
	Model          string
	Temperature    float64
	MaxOutputChars int
	Timeout        time.Duration
	MaxRetries     int
	MaxIterations  int
}

// Descriptor describes one agent role. Constructed once at process start and
// shared read-only across the whole run.
type Descriptor struct {
	Role         string
	Goal         string
	Backstory    string
	Capabilities []Capability
	Params       Params
}

// Can reports whether the agent is permitted to use the given capability.
func (d *Descriptor) Can(c Capability) bool {
	for _, have := range d.Capabilities {
		if have == c {
			return true
		}
	}
	return false
}

// Prompt assembles the full prompt for one invocation: the agent's identity
// and goal, its backstory, the capabilities it may use, and the task context.
func (d *Descriptor) Prompt(contextText string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are the %s.\nGoal: %s\n\n%s\n", d.Role, d.Goal, d.Backstory)
	if len(d.Capabilities) > 0 {
		caps := make([]string, len(d.Capabilities))
		for i, c := range d.Capabilities {
			caps[i] = string(c)
		}
		fmt.Fprintf(&b, "\nPermitted operations: %s\n", strings.Join(caps, ", "))
	}
	fmt.Fprintf(&b, "\n%s", contextText)
	return b.String()
}

// Result contains the outcome of one generation call.
type Result struct {
	Output    string
	Success   bool
	SessionID string
}

// Invoker is the generation call boundary: it turns an agent descriptor plus
// assembled context text into generated output. Timeouts and provider
// overloads surface through the error, which callers treat as task failure
// rather than a fatal run error.
type Invoker interface {
	Invoke(ctx context.Context, desc *Descriptor, contextText string) (*Result, error)
}
