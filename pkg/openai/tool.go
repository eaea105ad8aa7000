package openai

import (
	"encoding/json"
	"errors"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/kaptinlin/jsonrepair"
)

// ToolKind discriminates Tool variants.
type ToolKind string

const (
	ToolKindFunction ToolKind = "function"
	ToolKindMCP      ToolKind = "mcp"
)

// Tool declares either a callable function or a remote MCP server. Function
// fields and MCP fields are mutually exclusive.
type Tool struct {
	Kind ToolKind

	// Function tools.
	Name        string
	Description string
	Parameters  *Object
	Strict      *bool

	// MCP tools.
	ServerLabel     string
	ServerURL       string
	AllowedTools    []string
	RequireApproval string
}

// FunctionTool declares a function. params may be nil for a function that
// takes no arguments.
func FunctionTool(name, description string, params *Object) *Tool {
	return &Tool{Kind: ToolKindFunction, Name: name, Description: description, Parameters: params}
}

// FunctionToolFor declares a function whose parameters are inferred from T.
//
// Example:
//
//	type calcArgs struct {
//	    A float64 `json:"a"`
//	    B float64 `json:"b"`
//	}
//	tool, err := openai.FunctionToolFor[calcArgs]("calculator", "Adds two numbers")
func FunctionToolFor[T any](name, description string) (*Tool, error) {
	params, err := ParametersFor[T]()
	if err != nil {
		return nil, err
	}
	return FunctionTool(name, description, params), nil
}

// ParametersFor infers an object schema from the struct type T. Fields
// without omitempty or omitzero are required; a strict tool sends every
// field as required regardless.
func ParametersFor[T any]() (*Object, error) {
	s, err := jsonschema.For[T](&jsonschema.ForOptions{})
	if err != nil {
		return nil, configErrorf("infer parameters: %v", err)
	}
	return ObjectFromSchema(s)
}

// MCPTool declares a remote MCP server.
func MCPTool(serverLabel, serverURL string) *Tool {
	return &Tool{Kind: ToolKindMCP, ServerLabel: serverLabel, ServerURL: serverURL}
}

// WithStrict sets strict mode on a function tool.
func (t *Tool) WithStrict(strict bool) *Tool {
	t.Strict = &strict
	return t
}

// WithAllowedTools restricts which MCP tools may be called.
func (t *Tool) WithAllowedTools(names ...string) *Tool {
	t.AllowedTools = names
	return t
}

// WithRequireApproval sets the MCP approval policy, "always" or "never".
func (t *Tool) WithRequireApproval(policy string) *Tool {
	t.RequireApproval = policy
	return t
}

// Validate checks required fields and variant exclusivity.
func (t *Tool) Validate() error {
	switch t.Kind {
	case ToolKindFunction:
		if t.Name == "" {
			return configErrorf("function tool name is required")
		}
		if t.ServerLabel != "" || t.ServerURL != "" || len(t.AllowedTools) > 0 || t.RequireApproval != "" {
			return configErrorf("function tool %q has mcp fields set", t.Name)
		}
	case ToolKindMCP:
		if t.ServerURL == "" || t.ServerLabel == "" {
			return configErrorf("mcp tool needs server_label and server_url")
		}
		if t.Name != "" || t.Parameters != nil || t.Strict != nil {
			return configErrorf("mcp tool %q has function fields set", t.ServerLabel)
		}
		switch t.RequireApproval {
		case "", "always", "never":
		default:
			return configErrorf("mcp require_approval %q is not always or never", t.RequireApproval)
		}
	default:
		return configErrorf("unknown tool kind %q", t.Kind)
	}
	return nil
}

// functionWire is the function declaration body shared by every API shape.
type functionWire struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitzero"`
	Parameters  *Object `json:"parameters,omitzero"`
	Strict      *bool   `json:"strict,omitzero"`
}

// chatToolWire is the nested chat completions shape.
type chatToolWire struct {
	Type     string       `json:"type"`
	Function functionWire `json:"function"`
}

// responsesToolWire is the flattened Responses shape, covering both kinds.
type responsesToolWire struct {
	Type        string  `json:"type"`
	Name        string  `json:"name,omitzero"`
	Description string  `json:"description,omitzero"`
	Parameters  *Object `json:"parameters,omitzero"`
	Strict      *bool   `json:"strict,omitzero"`

	ServerLabel     string   `json:"server_label,omitzero"`
	ServerURL       string   `json:"server_url,omitzero"`
	AllowedTools    []string `json:"allowed_tools,omitzero"`
	RequireApproval string   `json:"require_approval,omitzero"`
}

func (t *Tool) function() functionWire {
	return functionWire{Name: t.Name, Description: t.Description, Parameters: t.parameters(), Strict: t.Strict}
}

// parameters returns the schema to send. Strict mode rejects optional
// properties, so a strict tool sends them all as required.
func (t *Tool) parameters() *Object {
	if t.Parameters == nil || t.Strict == nil || !*t.Strict {
		return t.Parameters
	}
	return t.Parameters.RequireAll()
}

// chatTools lowers tools to the chat completions shape. MCP tools are not
// accepted by that endpoint.
func chatTools(tools []*Tool) ([]chatToolWire, error) {
	if len(tools) == 0 {
		return nil, nil
	}
	out := make([]chatToolWire, 0, len(tools))
	for _, t := range tools {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if t.Kind != ToolKindFunction {
			return nil, configErrorf("chat completions accept only function tools, got %q", t.Kind)
		}
		out = append(out, chatToolWire{Type: "function", Function: t.function()})
	}
	return out, nil
}

// responsesTools lowers tools to the Responses shape.
func responsesTools(tools []*Tool) ([]responsesToolWire, error) {
	if len(tools) == 0 {
		return nil, nil
	}
	out := make([]responsesToolWire, 0, len(tools))
	for _, t := range tools {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		w := responsesToolWire{Type: string(t.Kind)}
		if t.Kind == ToolKindFunction {
			w.Name, w.Description, w.Parameters, w.Strict = t.Name, t.Description, t.parameters(), t.Strict
		} else {
			w.ServerLabel, w.ServerURL = t.ServerLabel, t.ServerURL
			w.AllowedTools, w.RequireApproval = t.AllowedTools, t.RequireApproval
		}
		out = append(out, w)
	}
	return out, nil
}

// ToolChoiceMode is the generic tool selection policy.
type ToolChoiceMode string

const (
	ToolChoiceAuto     ToolChoiceMode = "auto"
	ToolChoiceNone     ToolChoiceMode = "none"
	ToolChoiceRequired ToolChoiceMode = "required"
)

// ToolChoice is either a mode or a specific function name.
type ToolChoice struct {
	Mode     ToolChoiceMode
	Function string
}

// ChooseMode returns a mode-only choice.
func ChooseMode(mode ToolChoiceMode) *ToolChoice {
	return &ToolChoice{Mode: mode}
}

// ChooseFunction forces a call to the named function.
func ChooseFunction(name string) *ToolChoice {
	return &ToolChoice{Function: name}
}

// chatWire returns "auto"-style strings or the nested function object.
func (c *ToolChoice) chatWire() any {
	if c == nil {
		return nil
	}
	if c.Function == "" {
		return string(c.Mode)
	}
	return chatToolWire{Type: "function", Function: functionWire{Name: c.Function}}
}

// flatWire returns "auto"-style strings or {type, name}.
func (c *ToolChoice) flatWire() any {
	if c == nil {
		return nil
	}
	if c.Function == "" {
		return string(c.Mode)
	}
	return struct {
		Type string `json:"type"`
		Name string `json:"name"`
	}{"function", c.Function}
}

// MarshalJSON emits the flattened shape used by Responses and realtime.
func (c *ToolChoice) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.flatWire())
}

// FunctionCall is the function part of a tool call.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolCall is a function call requested by the model.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

// NewToolCall builds a function tool call.
func NewToolCall(id, name, arguments string) ToolCall {
	return ToolCall{ID: id, Type: "function", Function: FunctionCall{Name: name, Arguments: arguments}}
}

// ParseArguments decodes the argument JSON into v. Malformed JSON from the
// model is repaired once before giving up.
func (c *ToolCall) ParseArguments(v any) error {
	return parseArguments(c.Function.Arguments, v)
}

func parseArguments(args string, v any) error {
	if args == "" {
		args = "{}"
	}
	err := json.Unmarshal([]byte(args), v)
	if err == nil {
		return nil
	}
	var syntaxErr *json.SyntaxError
	if !errors.As(err, &syntaxErr) {
		return &CodecError{Op: "decode tool arguments", Err: err}
	}
	fixed, rerr := jsonrepair.JSONRepair(args)
	if rerr != nil {
		return &CodecError{Op: "repair tool arguments", Err: rerr}
	}
	if err := json.Unmarshal([]byte(fixed), v); err != nil {
		return &CodecError{Op: "decode tool arguments", Err: err}
	}
	return nil
}
