package api

import (
	"strings"
)

// PathFunc writes a command's path (relative to the territory segment) and validates its inputs.
type PathFunc func(b *strings.Builder) error

// QueryFunc appends entity specific filters.
type QueryFunc func(q *Query) error

// StaticPath returns a [PathFunc] that writes a fixed path.
func StaticPath(path string) PathFunc {
	return func(b *strings.Builder) error {
		b.WriteString(path)
		return nil
	}
}

// ListCommand is a [Command] that decodes a named array plus paging.
//
// Concrete list operations are values of this type parameterised with a path, filters, the
// items field name and a converter.
type ListCommand[E any] struct {
	Desc         Descriptor
	Path         PathFunc
	Params       QueryFunc
	ItemsField   string
	Convert      Converter[E]
	StartIndex   int
	ItemsPerPage int  // zero uses the descriptor default
	Unpaged      bool // omit startindex/itemsperpage
}

var _ Command[Page[struct{}]] = (*ListCommand[struct{}])(nil)

// Descriptor returns the request shape with paging defaults filled in.
func (c *ListCommand[E]) Descriptor() Descriptor {
	d := c.Desc
	if d.Paging.ItemsPerPage == 0 {
		d.Paging.ItemsPerPage = DefaultItemsPerPage
	}
	return d
}

func (c *ListCommand[E]) AppendPath(b *strings.Builder) error {
	if c.Path == nil {
		return nil
	}
	return c.Path(b)
}

// BuildQuery writes paging first, then the command's own filters.
func (c *ListCommand[E]) BuildQuery(q *Query) error {
	if !c.Unpaged {
		d := c.Descriptor()
		start := c.StartIndex
		if start <= 0 {
			start = d.Paging.StartIndex
		}
		perPage := c.ItemsPerPage
		if perPage <= 0 {
			perPage = d.Paging.ItemsPerPage
		}
		q.AddInt("startindex", start)
		q.AddInt("itemsperpage", perPage)
	}
	if c.Params != nil {
		return c.Params(q)
	}
	return nil
}

func (c *ListCommand[E]) EncodeBody() ([]byte, error) { return nil, nil }

func (c *ListCommand[E]) Decode(body []byte) (Page[E], error) {
	return DecodeList(body, c.ItemsField, c.Convert)
}

// ItemCommand is a [Command] that decodes the root object.
type ItemCommand[E any] struct {
	Desc    Descriptor
	Path    PathFunc
	Params  QueryFunc
	Body    func() ([]byte, error)
	Convert Converter[E]
}

var _ Command[struct{}] = (*ItemCommand[struct{}])(nil)

func (c *ItemCommand[E]) Descriptor() Descriptor { return c.Desc }

func (c *ItemCommand[E]) AppendPath(b *strings.Builder) error {
	if c.Path == nil {
		return nil
	}
	return c.Path(b)
}

func (c *ItemCommand[E]) BuildQuery(q *Query) error {
	if c.Params == nil {
		return nil
	}
	return c.Params(q)
}

func (c *ItemCommand[E]) EncodeBody() ([]byte, error) {
	if c.Body == nil {
		return nil, nil
	}
	return c.Body()
}

func (c *ItemCommand[E]) Decode(body []byte) (E, error) {
	return DecodeItem(body, c.Convert)
}
