package llmstream

// pendingToolCall is an in-progress tool-call record keyed by the
// provider's stream index. Arguments grow by pure concatenation in arrival
// order; id and name are set by the first fragment that carries them.
type pendingToolCall struct {
	index int
	id    string
	name  string
	args  []byte
}

// ToolCallAccumulator reassembles index-keyed tool-call fragments into
// complete ToolCalls. It is owned by a single stream and never reused.
type ToolCallAccumulator struct {
	entries []*pendingToolCall
	byIndex map[int]*pendingToolCall
}

// NewToolCallAccumulator creates an empty accumulator.
func NewToolCallAccumulator() *ToolCallAccumulator {
	return &ToolCallAccumulator{byIndex: make(map[int]*pendingToolCall)}
}

// Merge folds one stream delta's tool-call fragments into the accumulator.
// Fragments are appended, never reordered or deduplicated.
func (a *ToolCallAccumulator) Merge(delta Delta) {
	for _, frag := range delta.ToolCalls {
		entry, ok := a.byIndex[frag.Index]
		if !ok {
			entry = &pendingToolCall{index: frag.Index}
			a.byIndex[frag.Index] = entry
			a.entries = append(a.entries, entry)
		}
		if frag.ID != "" {
			entry.id = frag.ID
		}
		if frag.Function.Name != "" {
			entry.name = frag.Function.Name
		}
		if frag.Function.Arguments != "" {
			entry.args = append(entry.args, frag.Function.Arguments...)
		}
	}
}

// Len returns the number of distinct tool calls seen so far.
func (a *ToolCallAccumulator) Len() int { return len(a.entries) }

// Finalize converts the accumulated fragments into complete ToolCalls, in
// the order their indices were first seen on the stream. Providers emit
// indices in ascending order in practice, so first-seen order and numeric
// order coincide; if they ever diverge, first-seen order wins.
func (a *ToolCallAccumulator) Finalize() []ToolCall {
	if len(a.entries) == 0 {
		return nil
	}
	calls := make([]ToolCall, 0, len(a.entries))
	for _, entry := range a.entries {
		calls = append(calls, ToolCall{
			ID:        entry.id,
			Name:      entry.name,
			Arguments: string(entry.args),
		})
	}
	return calls
}
