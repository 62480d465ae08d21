package agentloop

import (
	"crypto/sha256"
	"fmt"
)

// toolCallSignature computes a deterministic signature for a tool call
// (name + hash prefix of its arguments).
func toolCallSignature(name, arguments string) string {
	h := sha256.Sum256([]byte(arguments))
	return fmt.Sprintf("%s:%x", name, h[:8])
}

// recentToolCallSignatures extracts signatures from the most recent
// tool_call steps, in chronological order.
func recentToolCallSignatures(steps []Step, count int) []string {
	var sigs []string
	for i := len(steps) - 1; i >= 0 && len(sigs) < count; i-- {
		step := steps[i]
		if step.Kind == StepToolCall && step.ToolCall != nil {
			sigs = append(sigs, toolCallSignature(step.ToolCall.Call.Name, step.ToolCall.Call.Arguments))
		}
	}
	for i, j := 0, len(sigs)-1; i < j; i, j = i+1, j-1 {
		sigs[i], sigs[j] = sigs[j], sigs[i]
	}
	return sigs
}

// detectLoop reports whether the last windowSize tool calls follow a
// repeating pattern of length 1, 2, or 3. An agent re-issuing the same
// call with the same arguments is burning iterations without progress.
func detectLoop(steps []Step, windowSize int) bool {
	sigs := recentToolCallSignatures(steps, windowSize)
	if len(sigs) < windowSize {
		return false
	}

	for patternLen := 1; patternLen <= 3; patternLen++ {
		if windowSize%patternLen != 0 {
			continue
		}
		pattern := sigs[:patternLen]
		allMatch := true
		for i := patternLen; i < windowSize && allMatch; i += patternLen {
			for j := 0; j < patternLen; j++ {
				if sigs[i+j] != pattern[j] {
					allMatch = false
					break
				}
			}
		}
		if allMatch {
			return true
		}
	}
	return false
}
