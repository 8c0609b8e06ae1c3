package batch

// ItemStatus is the processing outcome of a single batch item.
type ItemStatus string

// Batch item status values.
const (
	StatusOK    ItemStatus = "ok"
	StatusError ItemStatus = "error"
)

// Result is the outcome of one item in an ingestion batch. SKU is empty when
// the item failed before a sku could be extracted.
type Result struct {
	sku    string
	status ItemStatus
	err    error
}

// NewOK creates a successful result.
func NewOK(sku string) Result { return Result{sku: sku, status: StatusOK} }

// NewError creates a failed result.
func NewError(sku string, err error) Result {
	return Result{sku: sku, status: StatusError, err: err}
}

// SKU returns the item sku, if known.
func (r Result) SKU() string { return r.sku }

// Status returns the processing outcome.
func (r Result) Status() ItemStatus { return r.status }

// Err returns the error, if any.
func (r Result) Err() error { return r.err }
