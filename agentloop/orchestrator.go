package agentloop

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/pharmera/agentkit/llmstream"
)

// TimeoutError reports that a run exceeded its wall-clock budget. It is
// detected at iteration boundaries only, so the actual elapsed time can
// exceed the budget by however long the last network read or tool call
// took.
type TimeoutError struct {
	Elapsed time.Duration
	Budget  time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("execution timed out after %v (budget %v)", e.Elapsed.Round(time.Millisecond), e.Budget)
}

// Orchestrator drives the tool-calling agent loop: ask the model, run the
// tools it requested, feed results back, and repeat until a final answer,
// the iteration cap, or the timeout. Each Run owns its history and
// Execution exclusively; one Orchestrator may serve concurrent Runs.
type Orchestrator struct {
	client   *llmstream.Client
	registry *ToolRegistry
	config   Config
	logger   *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger injects a structured logger. The default logger discards
// everything, keeping the library quiet unless the host opts in.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

// New creates an Orchestrator. Configuration problems are reported here,
// before any run starts, and never appear in an execution trace.
func New(client *llmstream.Client, registry *ToolRegistry, config Config, opts ...Option) (*Orchestrator, error) {
	if client == nil {
		return nil, llmstream.NewConfigurationError("orchestrator: client is required")
	}
	if registry == nil {
		registry = NewToolRegistry()
	}
	config = config.withDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	o := &Orchestrator{
		client:   client,
		registry: registry,
		config:   config,
		logger:   slog.New(discardHandler{}),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Run executes one agent conversation to completion. The returned
// Execution is always non-nil and carries the full trace; the error is
// non-nil exactly when the run aborted (transport failure or timeout) —
// reaching the iteration cap is reported only through the Execution.
//
// callbacks.OnComplete is invoked exactly once on every path out of this
// method.
func (o *Orchestrator) Run(ctx context.Context, messages []llmstream.Message, callbacks Callbacks) (*Execution, error) {
	start := time.Now()
	execution := newExecution(start)
	logger := o.logger.With("execution_id", execution.ID)

	history := append([]llmstream.Message(nil), messages...)
	tools := o.registry.Definitions(o.config.EnabledTools)

	logger.Debug("run started",
		"provider", o.config.Provider,
		"model", o.config.model(),
		"tools", len(tools),
		"max_iterations", o.config.MaxIterations)

	var runErr error

	for {
		// Timeout is checked only here, at the iteration boundary;
		// in-flight network reads and tool calls are never preempted.
		if elapsed := time.Since(start); elapsed > o.config.Timeout {
			runErr = &TimeoutError{Elapsed: elapsed, Budget: o.config.Timeout}
			break
		}

		// The cap bounds model round-trips, not tool calls, and must
		// never be exceeded by the recorded iteration count.
		if execution.IterationCount >= o.config.MaxIterations {
			execution.Error = fmt.Sprintf("iteration limit reached: %d model calls without a final response", o.config.MaxIterations)
			logger.Warn("iteration limit reached", "max_iterations", o.config.MaxIterations)
			break
		}

		execution.IterationCount++
		callbacks.iterationStart(execution.IterationCount)
		logger.Debug("iteration", "n", execution.IterationCount)

		o.warnOnContextUsage(logger, history)

		result, err := o.client.Complete(ctx, llmstream.Request{
			Provider:    o.config.Provider,
			Model:       o.config.Model,
			Messages:    history,
			Tools:       tools,
			Temperature: o.config.Temperature,
		}, callbacks.chunk)
		if err != nil {
			runErr = fmt.Errorf("completion failed on iteration %d: %w", execution.IterationCount, err)
			break
		}
		execution.Usage = execution.Usage.Add(result.Usage)

		if result.FinishReason == llmstream.FinishStop || !result.HasToolCalls() {
			text := result.Text
			execution.appendResponseStep(text, time.Now())
			execution.FinalResponse = &text
			execution.Success = true
			logger.Info("run completed",
				"iterations", execution.IterationCount,
				"steps", len(execution.Steps))
			break
		}

		// The assistant message carries the raw tool-call descriptors so
		// the provider can correlate the tool results that follow.
		history = append(history, llmstream.AssistantMessage(result.Text, result.ToolCalls))

		// Strictly sequential: the order of tool messages must match the
		// order the model requested the calls.
		for _, call := range result.ToolCalls {
			callbacks.toolCall(call)
			execution.appendToolCallStep(call, time.Now())

			toolStart := time.Now()
			content, isError, known := o.executeTool(ctx, call)
			resultStep := ToolResultStep{
				ToolCallID: call.ID,
				Content:    content,
				IsError:    isError,
				DurationMs: time.Since(toolStart).Milliseconds(),
			}
			execution.appendToolResultStep(resultStep, time.Now())
			callbacks.toolResult(resultStep)

			history = append(history, llmstream.ToolMessage(call.ID, truncateToolOutput(content, call.Name, o.config)))
			if known {
				execution.recordToolUse(call.Name)
			}

			logger.Debug("tool executed",
				"tool", call.Name,
				"call_id", call.ID,
				"duration_ms", resultStep.DurationMs,
				"is_error", isError)
		}

		if o.config.LoopDetectionWindow > 0 && detectLoop(execution.Steps, o.config.LoopDetectionWindow) {
			warning := fmt.Sprintf("Loop detected: the last %d tool calls follow a repeating pattern. Try a different approach.", o.config.LoopDetectionWindow)
			history = append(history, llmstream.UserMessage(warning))
			logger.Warn("tool-call loop detected", "window", o.config.LoopDetectionWindow)
		}
	}

	execution.finish(time.Now())

	if runErr != nil {
		execution.Success = false
		execution.Error = runErr.Error()
		logger.Error("run aborted", "error", runErr)
		callbacks.errored(runErr)
	}
	callbacks.complete(execution)

	return execution, runErr
}

// executeTool dispatches one tool call through the registry, converting
// every failure mode into a structured result the model can recover from.
// known reports whether the name resolved to an enabled tool; names the
// model invented are never counted as used.
func (o *Orchestrator) executeTool(ctx context.Context, call llmstream.ToolCall) (content string, isError, known bool) {
	tool := o.lookupEnabled(call.Name)
	if tool == nil {
		return errorResult(fmt.Sprintf("unknown tool %q", call.Name), o.enabledNames()), true, false
	}

	args, ok := ParseArguments(call.Arguments)
	if !ok {
		return errorResult(fmt.Sprintf("tool %q: arguments are not valid JSON", call.Name), nil), true, true
	}
	payload, err := json.Marshal(args)
	if err != nil {
		return errorResult(fmt.Sprintf("tool %q: arguments are not serializable", call.Name), nil), true, true
	}

	result, err := tool.Executor(ctx, payload)
	if err != nil {
		return errorResult(fmt.Sprintf("tool %q failed: %v", call.Name, err), nil), true, true
	}
	return result, false, true
}

// lookupEnabled resolves a tool name against the registry, honoring the
// per-run EnabledTools restriction: a registered tool outside the enabled
// set was never offered to the model, so calling it is an error.
func (o *Orchestrator) lookupEnabled(name string) *RegisteredTool {
	if o.config.EnabledTools != nil {
		allowed := false
		for _, enabled := range o.config.EnabledTools {
			if enabled == name {
				allowed = true
				break
			}
		}
		if !allowed {
			return nil
		}
	}
	return o.registry.Get(name)
}

// enabledNames lists the tools the model may call in this run.
func (o *Orchestrator) enabledNames() []string {
	if o.config.EnabledTools == nil {
		return o.registry.Names()
	}
	var names []string
	for _, name := range o.config.EnabledTools {
		if o.registry.Get(name) != nil {
			names = append(names, name)
		}
	}
	return names
}

// warnOnContextUsage logs when the estimated prompt size crosses 80% of
// the model's context window.
func (o *Orchestrator) warnOnContextUsage(logger *slog.Logger, history []llmstream.Message) {
	window := o.config.contextWindow()
	if window <= 0 {
		return
	}
	approx := llmstream.ApproxTokens(history)
	if approx > window*8/10 {
		logger.Warn("context usage high",
			"approx_tokens", approx,
			"context_window", window,
			"pct", approx*100/window)
	}
}

// discardHandler is a slog.Handler that drops every record.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }
