package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

// ConversationInclude names extra data returned with conversation items.
type ConversationInclude string

const (
	ConversationIncludeWebSearchSources          ConversationInclude = "web_search_call.action.sources"
	ConversationIncludeCodeInterpreterOutputs    ConversationInclude = "code_interpreter_call.outputs"
	ConversationIncludeFileSearchResults         ConversationInclude = "file_search_call.results"
	ConversationIncludeInputImageURL             ConversationInclude = "message.input_image.image_url"
	ConversationIncludeReasoningEncryptedContent ConversationInclude = "reasoning.encrypted_content"
)

// Conversation is a server-side conversation container.
type Conversation struct {
	ID        string            `json:"id"`
	Object    string            `json:"object"`
	CreatedAt int64             `json:"created_at"`
	Metadata  map[string]string `json:"metadata,omitzero"`
}

// ConversationItem is an item stored in a conversation.
type ConversationItem struct {
	ID      string          `json:"id"`
	Object  string          `json:"object,omitzero"`
	Type    string          `json:"type"`
	Role    Role            `json:"role,omitzero"`
	Status  string          `json:"status,omitzero"`
	Content json.RawMessage `json:"content,omitzero"`
	CallID  string          `json:"call_id,omitzero"`
	Output  json.RawMessage `json:"output,omitzero"`
}

// ItemListParams page through conversation items.
type ItemListParams struct {
	ListParams
	Include []ConversationInclude
}

type conversationCreateWire struct {
	Metadata map[string]string `json:"metadata,omitzero"`
	Items    []any             `json:"items,omitzero"`
}

// ConversationsService manages conversations.
type ConversationsService struct {
	client *Client
}

func newConversationsService(client *Client) *ConversationsService {
	return &ConversationsService{client: client}
}

// Create creates a conversation with optional metadata and initial items.
func (s *ConversationsService) Create(ctx context.Context, metadata map[string]string, items ...Message) (*Conversation, error) {
	body := &conversationCreateWire{Metadata: metadata}
	if len(items) > 0 {
		wire, err := responsesMessages(items)
		if err != nil {
			return nil, err
		}
		body.Items = wire
	}
	return s.conversation(ctx, "conversations.create", http.MethodPost, "conversations", body)
}

// Retrieve returns a conversation.
func (s *ConversationsService) Retrieve(ctx context.Context, id string) (*Conversation, error) {
	path, err := conversationPath(id, "")
	if err != nil {
		return nil, err
	}
	return s.conversation(ctx, "conversations.retrieve", http.MethodGet, path, nil)
}

// Update replaces the metadata of a conversation.
func (s *ConversationsService) Update(ctx context.Context, id string, metadata map[string]string) (*Conversation, error) {
	path, err := conversationPath(id, "")
	if err != nil {
		return nil, err
	}
	body := struct {
		Metadata map[string]string `json:"metadata"`
	}{metadata}
	return s.conversation(ctx, "conversations.update", http.MethodPost, path, body)
}

// Delete deletes a conversation.
func (s *ConversationsService) Delete(ctx context.Context, id string) (*DeleteResponse, error) {
	path, err := conversationPath(id, "")
	if err != nil {
		return nil, err
	}
	var resp DeleteResponse
	err = s.client.http.doJSON(ctx, &request{
		op:     "conversations.delete",
		method: http.MethodDelete,
		path:   path,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// List pages through conversations. Only Limit and After apply.
func (s *ConversationsService) List(ctx context.Context, params *ListParams) (*List[*Conversation], error) {
	var q query
	if params != nil {
		q = q.addInt("limit", params.Limit)
		q = q.add("after", params.After)
	}
	var resp List[*Conversation]
	err := s.client.http.doJSON(ctx, &request{
		op:     "conversations.list",
		method: http.MethodGet,
		path:   "conversations",
		query:  q,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateItems appends items to a conversation.
func (s *ConversationsService) CreateItems(ctx context.Context, id string, items ...Message) (*List[*ConversationItem], error) {
	path, err := conversationPath(id, "/items")
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, configErrorf("conversation items are empty")
	}
	wire, err := responsesMessages(items)
	if err != nil {
		return nil, err
	}
	body := struct {
		Items []any `json:"items"`
	}{wire}
	var resp List[*ConversationItem]
	err = s.client.http.doJSON(ctx, &request{
		op:     "conversations.items_create",
		method: http.MethodPost,
		path:   path,
		body:   body,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListItems pages through the items of a conversation.
func (s *ConversationsService) ListItems(ctx context.Context, id string, params *ItemListParams) (*List[*ConversationItem], error) {
	path, err := conversationPath(id, "/items")
	if err != nil {
		return nil, err
	}
	var q query
	if params != nil {
		if err := params.validate(); err != nil {
			return nil, err
		}
		q = q.addInt("limit", params.Limit)
		q = q.add("after", params.After)
		q = q.add("order", params.Order)
		for _, inc := range params.Include {
			q = q.add("include[]", string(inc))
		}
	}
	var resp List[*ConversationItem]
	err = s.client.http.doJSON(ctx, &request{
		op:     "conversations.items_list",
		method: http.MethodGet,
		path:   path,
		query:  q,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func conversationPath(id, suffix string) (string, error) {
	if id == "" {
		return "", configErrorf("conversation id is required")
	}
	return "conversations/" + url.PathEscape(id) + suffix, nil
}

func (s *ConversationsService) conversation(ctx context.Context, op, method, path string, body any) (*Conversation, error) {
	var resp Conversation
	err := s.client.http.doJSON(ctx, &request{
		op:     op,
		method: method,
		path:   path,
		body:   body,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
