package openai

// List is a cursor-paginated collection.
type List[T any] struct {
	Object  string `json:"object"`
	Data    []T    `json:"data"`
	FirstID string `json:"first_id,omitzero"`
	LastID  string `json:"last_id,omitzero"`
	HasMore bool   `json:"has_more"`
}

// ListParams are the common pagination parameters. Zero values are not
// sent.
type ListParams struct {
	Limit  int
	After  string
	Before string
	// Order is "asc" or "desc".
	Order string
}

func (p *ListParams) query() query {
	if p == nil {
		return nil
	}
	var q query
	q = q.addInt("limit", p.Limit)
	q = q.add("after", p.After)
	q = q.add("before", p.Before)
	q = q.add("order", p.Order)
	return q
}

func (p *ListParams) validate() error {
	if p == nil {
		return nil
	}
	switch p.Order {
	case "", "asc", "desc":
		return nil
	}
	return configErrorf("order %q is not asc or desc", p.Order)
}
