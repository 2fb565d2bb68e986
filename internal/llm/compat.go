package llm

import "strings"

// Some model families reject the legacy max_tokens parameter or any
// non-default temperature. The adapter recovers by walking a small
// state machine with exactly two fallback edges, each traversed at
// most once per call:
//
//	unsupported max_tokens    -> resend with max_completion_tokens
//	unsupported temperature   -> resend without temperature
//
// Any error that matches neither edge, or repeats an edge already
// taken, is propagated to the caller.
type compatEdge int

const (
	edgeNone compatEdge = iota
	edgeRenameMaxTokens
	edgeDropTemperature
)

// classifyCompatError inspects a provider error for the known
// unsupported-parameter signatures.
func classifyCompatError(err error) compatEdge {
	if err == nil {
		return edgeNone
	}
	text := err.Error()
	switch {
	case strings.Contains(text, "Unsupported parameter: 'max_tokens'"),
		strings.Contains(text, "'max_tokens' is not supported"):
		return edgeRenameMaxTokens
	case strings.Contains(text, "Unsupported value: 'temperature'"),
		strings.Contains(text, "does not support") && strings.Contains(text, "temperature"):
		return edgeDropTemperature
	}
	return edgeNone
}
