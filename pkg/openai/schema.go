package openai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/google/jsonschema-go/jsonschema"
)

// Type is a JSON Schema leaf type.
type Type string

const (
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeInteger Type = "integer"
	TypeBoolean Type = "boolean"
)

// ArrayField describes one string property of an array item object.
type ArrayField struct {
	Name        string
	Description string
}

// Object is a strict JSON Schema object node: every property added through
// its builders is required in insertion order and additionalProperties is
// always false. Objects taken from ParametersFor or ObjectFromSchema keep
// the required list they came with; RequireAll lifts it to every property.
//
// The zero value is not usable; call NewObject.
type Object struct {
	s *jsonschema.Schema
}

// NewObject returns an empty strict object node.
func NewObject() *Object {
	return &Object{s: newStrictObject()}
}

func newStrictObject() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:                 "object",
		AdditionalProperties: falseSchema(),
	}
}

// falseSchema marshals as the JSON literal false.
func falseSchema() *jsonschema.Schema {
	return &jsonschema.Schema{Not: &jsonschema.Schema{}}
}

// WithDescription sets the object's own description.
func (o *Object) WithDescription(description string) *Object {
	o.s.Description = description
	return o
}

// AddProperty adds a leaf property. Re-adding a name replaces its schema
// and keeps its original position.
func (o *Object) AddProperty(name string, typ Type, description string) *Object {
	var child *jsonschema.Schema
	if typ == "object" {
		child = newStrictObject()
	} else {
		child = &jsonschema.Schema{Type: string(typ)}
	}
	child.Description = description
	o.set(name, child)
	return o
}

// AddEnum adds a string property restricted to values.
func (o *Object) AddEnum(name, description string, values ...string) *Object {
	enum := make([]any, len(values))
	for i, v := range values {
		enum[i] = v
	}
	o.set(name, &jsonschema.Schema{Type: string(TypeString), Description: description, Enum: enum})
	return o
}

// AddArray adds an array whose items are objects built from fields, each a
// required string leaf.
func (o *Object) AddArray(name string, fields []ArrayField) *Object {
	item := newStrictObject()
	for _, f := range fields {
		setProperty(item, f.Name, &jsonschema.Schema{Type: string(TypeString), Description: f.Description})
	}
	o.set(name, &jsonschema.Schema{Type: "array", Items: item})
	return o
}

// AddArrayOf adds an array of leaves of the given type.
func (o *Object) AddArrayOf(name string, typ Type, description string) *Object {
	o.set(name, &jsonschema.Schema{
		Type:        "array",
		Description: description,
		Items:       &jsonschema.Schema{Type: string(typ)},
	})
	return o
}

// AddObjectArray adds an array whose items are copies of item.
func (o *Object) AddObjectArray(name, description string, item *Object) *Object {
	o.set(name, &jsonschema.Schema{
		Type:        "array",
		Description: description,
		Items:       cloneSchema(item.s),
	})
	return o
}

// AddObject adds a nested object. The child is copied, so later changes
// to child do not affect o.
func (o *Object) AddObject(name, description string, child *Object) *Object {
	s := cloneSchema(child.s)
	if description != "" {
		s.Description = description
	}
	o.set(name, s)
	return o
}

func (o *Object) set(name string, child *jsonschema.Schema) {
	setProperty(o.s, name, child)
}

func setProperty(s *jsonschema.Schema, name string, child *jsonschema.Schema) {
	if s.Properties == nil {
		s.Properties = map[string]*jsonschema.Schema{}
	}
	if _, exists := s.Properties[name]; !exists {
		s.PropertyOrder = append(s.PropertyOrder, name)
		s.Required = append(s.Required, name)
	}
	s.Properties[name] = child
}

// RequireAll returns a copy in which every property of every object node is
// required, as strict function calling demands.
func (o *Object) RequireAll() *Object {
	c := &Object{s: cloneSchema(o.s)}
	walkSchemas(c.s, func(n *jsonschema.Schema) {
		if len(n.Properties) == 0 {
			return
		}
		names := slices.Clone(n.PropertyOrder)
		for _, k := range slices.Sorted(maps.Keys(n.Properties)) {
			if !slices.Contains(names, k) {
				names = append(names, k)
			}
		}
		n.Required = names
	})
	return c
}

// Properties returns the property names in insertion order.
func (o *Object) Properties() []string {
	return slices.Clone(o.s.PropertyOrder)
}

// Required returns the required property names.
func (o *Object) Required() []string {
	return slices.Clone(o.s.Required)
}

// Property returns the schema of a property as JSON.
func (o *Object) Property(name string) (json.RawMessage, bool) {
	p, ok := o.s.Properties[name]
	if !ok {
		return nil, false
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, false
	}
	return data, true
}

// JSONSchema returns a copy of the underlying schema tree.
func (o *Object) JSONSchema() *jsonschema.Schema {
	return cloneSchema(o.s)
}

// Clone returns a deep copy that can be mutated independently.
func (o *Object) Clone() *Object {
	if o == nil {
		return nil
	}
	return &Object{s: cloneSchema(o.s)}
}

// Equal reports whether both trees serialize identically.
func (o *Object) Equal(other *Object) bool {
	if o == nil || other == nil {
		return o == other
	}
	a, err1 := json.Marshal(o)
	b, err2 := json.Marshal(other)
	return err1 == nil && err2 == nil && bytes.Equal(a, b)
}

// MarshalJSON emits properties in insertion order.
func (o *Object) MarshalJSON() ([]byte, error) {
	if o == nil || o.s == nil {
		return []byte("null"), nil
	}
	return json.Marshal(o.s)
}

// UnmarshalJSON parses a schema and restores property order from the
// document, at every depth.
func (o *Object) UnmarshalJSON(data []byte) error {
	var s jsonschema.Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s.Type != "object" {
		return fmt.Errorf("schema root type is %q, want object", s.Type)
	}
	if err := restorePropertyOrder(&s, data); err != nil {
		return err
	}
	o.s = &s
	return nil
}

// ObjectFromSchema wraps an existing schema tree. The tree is copied.
func ObjectFromSchema(s *jsonschema.Schema) (*Object, error) {
	if s == nil || s.Type != "object" {
		return nil, configErrorf("schema must be an object")
	}
	return &Object{s: cloneSchema(s)}, nil
}

// cloneSchema deep-copies s. CloneSchemas copies every sub-schema but
// shares slices, so those are copied in a second, iterative pass.
func cloneSchema(s *jsonschema.Schema) *jsonschema.Schema {
	if s == nil {
		return nil
	}
	c := s.CloneSchemas()
	walkSchemas(c, func(n *jsonschema.Schema) {
		n.Required = slices.Clone(n.Required)
		n.PropertyOrder = slices.Clone(n.PropertyOrder)
		n.Enum = slices.Clone(n.Enum)
		n.Types = slices.Clone(n.Types)
	})
	return c
}

// walkSchemas visits every node reachable through the keywords this
// package produces, without recursion.
func walkSchemas(root *jsonschema.Schema, visit func(*jsonschema.Schema)) {
	stack := []*jsonschema.Schema{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == nil {
			continue
		}
		visit(n)
		for _, p := range n.Properties {
			stack = append(stack, p)
		}
		stack = append(stack, n.Items, n.AdditionalProperties)
		stack = append(stack, n.AnyOf...)
		stack = append(stack, n.OneOf...)
		stack = append(stack, n.AllOf...)
		for _, d := range n.Defs {
			stack = append(stack, d)
		}
	}
}

// restorePropertyOrder sets PropertyOrder on every object node from the
// key order in data.
func restorePropertyOrder(root *jsonschema.Schema, data []byte) error {
	type frame struct {
		s   *jsonschema.Schema
		raw json.RawMessage
	}
	stack := []frame{{root, data}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.s == nil || len(f.raw) == 0 || f.raw[0] != '{' {
			continue
		}
		var fields struct {
			Properties           json.RawMessage `json:"properties"`
			Items                json.RawMessage `json:"items"`
			AdditionalProperties json.RawMessage `json:"additionalProperties"`
		}
		if err := json.Unmarshal(f.raw, &fields); err != nil {
			return err
		}
		if len(fields.Properties) > 0 {
			keys, values, err := orderedMembers(fields.Properties)
			if err != nil {
				return err
			}
			f.s.PropertyOrder = keys
			for i, k := range keys {
				stack = append(stack, frame{f.s.Properties[k], values[i]})
			}
		}
		stack = append(stack,
			frame{f.s.Items, fields.Items},
			frame{f.s.AdditionalProperties, fields.AdditionalProperties},
		)
	}
	return nil
}

// orderedMembers returns the keys and raw values of a JSON object in
// document order. Duplicate keys keep their first position.
func orderedMembers(raw json.RawMessage) ([]string, []json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	var (
		keys   []string
		values []json.RawMessage
		index  = map[string]int{}
	)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("unexpected token %v in properties", tok)
		}
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, nil, err
		}
		if i, dup := index[key]; dup {
			values[i] = v
			continue
		}
		index[key] = len(keys)
		keys = append(keys, key)
		values = append(values, v)
	}
	return keys, values, nil
}

// SchemaKind selects the wire shape of a structured-output wrapper.
type SchemaKind string

const (
	// SchemaKindChat is {name, schema} for chat response_format.json_schema.
	SchemaKindChat SchemaKind = "chat_json_schema"
	// SchemaKindJSONSchema is {type:"json_schema", name, schema} for
	// Responses text.format.
	SchemaKindJSONSchema SchemaKind = "json_schema"
	// SchemaKindText is {type:"text"} for Responses text.format.
	SchemaKindText SchemaKind = "text"
)

// JSONSchema wraps a schema tree with its usage mode.
type JSONSchema struct {
	Kind        SchemaKind
	Name        string
	Description string
	// Strict is omitted when nil.
	Strict *bool
	Schema *Object
}

// ChatJSONSchema returns a wrapper for chat completions with an empty root.
func ChatJSONSchema(name string) *JSONSchema {
	return &JSONSchema{Kind: SchemaKindChat, Name: name, Schema: NewObject()}
}

// ResponsesJSONSchema returns a wrapper for the Responses API with an
// empty root.
func ResponsesJSONSchema(name string) *JSONSchema {
	return &JSONSchema{Kind: SchemaKindJSONSchema, Name: name, Schema: NewObject()}
}

// ResponsesTextSchema returns the plain-text format for the Responses API.
func ResponsesTextSchema() *JSONSchema {
	return &JSONSchema{Kind: SchemaKindText}
}

// WithSchema replaces the root object.
func (j *JSONSchema) WithSchema(o *Object) *JSONSchema {
	j.Schema = o
	return j
}

// WithStrict sets the strict flag.
func (j *JSONSchema) WithStrict(strict bool) *JSONSchema {
	j.Strict = &strict
	return j
}

// Clone returns a deep copy.
func (j *JSONSchema) Clone() *JSONSchema {
	if j == nil {
		return nil
	}
	c := *j
	if j.Strict != nil {
		v := *j.Strict
		c.Strict = &v
	}
	c.Schema = j.Schema.Clone()
	return &c
}

type jsonSchemaWire struct {
	Type        string  `json:"type,omitzero"`
	Name        string  `json:"name,omitzero"`
	Description string  `json:"description,omitzero"`
	Schema      *Object `json:"schema,omitzero"`
	Strict      *bool   `json:"strict,omitzero"`
}

func (j *JSONSchema) validate() error {
	if j.Kind == SchemaKindText {
		return nil
	}
	if j.Name == "" {
		return configErrorf("json schema name is required")
	}
	if j.Schema == nil {
		return configErrorf("json schema %q has no schema", j.Name)
	}
	return nil
}

// MarshalJSON emits the shape selected by Kind.
func (j *JSONSchema) MarshalJSON() ([]byte, error) {
	switch j.Kind {
	case SchemaKindText:
		return json.Marshal(jsonSchemaWire{Type: "text"})
	case SchemaKindJSONSchema:
		return json.Marshal(jsonSchemaWire{
			Type:        "json_schema",
			Name:        j.Name,
			Description: j.Description,
			Schema:      j.Schema,
			Strict:      j.Strict,
		})
	case SchemaKindChat, "":
		return json.Marshal(jsonSchemaWire{
			Name:        j.Name,
			Description: j.Description,
			Schema:      j.Schema,
			Strict:      j.Strict,
		})
	default:
		return nil, fmt.Errorf("unknown schema kind %q", j.Kind)
	}
}

// UnmarshalJSON infers Kind from the type tag.
func (j *JSONSchema) UnmarshalJSON(data []byte) error {
	var w jsonSchemaWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch w.Type {
	case "text":
		j.Kind = SchemaKindText
	case "json_schema":
		j.Kind = SchemaKindJSONSchema
	case "":
		j.Kind = SchemaKindChat
	default:
		return fmt.Errorf("unknown schema format type %q", w.Type)
	}
	j.Name = w.Name
	j.Description = w.Description
	j.Schema = w.Schema
	j.Strict = w.Strict
	return nil
}
