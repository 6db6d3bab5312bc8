package api

// Response carries the outcome of a single command execution.
//
// Failures are values: Error is nil exactly when the call succeeded.
type Response struct {
	StatusCode            *int   // nil when no response was received
	Error                 error  // nil on success
	ErrorBody             string // raw body of a failed response
	RequestID             string
	ContentType           string
	IdentityHeaderMissing *bool // nil when the dispatcher does not check the identity header
}

// Succeeded reports whether the call produced a usable result.
func (r *Response) Succeeded() bool { return r.Error == nil }

// TimedOut reports whether the call ended without any HTTP status.
func (r *Response) TimedOut() bool { return r.StatusCode == nil }

// Status returns the HTTP status or zero.
func (r *Response) Status() int {
	if r.StatusCode == nil {
		return 0
	}
	return *r.StatusCode
}

// ItemResponse is a [Response] for single-object commands.
type ItemResponse[T any] struct {
	Response
	Result T
}

// ListResponse is a [Response] for list commands.
//
// StartIndex, ItemsPerPage and TotalResults are either all set or all nil.
type ListResponse[T any] struct {
	Response
	Items        []T
	StartIndex   *int
	ItemsPerPage *int
	TotalResults *int
}

// HasPaging reports whether the service echoed a paging block.
func (r *ListResponse[T]) HasPaging() bool { return r.TotalResults != nil }

// Page is the decoded form of a list payload.
type Page[T any] struct {
	Items  []T
	Paging *Paging
}

// Paging is the service's paging block.
type Paging struct {
	StartIndex   int `json:"startindex"`
	ItemsPerPage int `json:"itemsperpage"`
	Total        int `json:"total"`
}

func newListResponse[T any](resp Response, page Page[T]) *ListResponse[T] {
	out := &ListResponse[T]{Response: resp, Items: page.Items}
	if page.Paging != nil {
		start, per, total := page.Paging.StartIndex, page.Paging.ItemsPerPage, page.Paging.Total
		out.StartIndex, out.ItemsPerPage, out.TotalResults = &start, &per, &total
	}
	return out
}
