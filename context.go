package rco

//////
// Const, vars, types.
//////

// Context identifies a slice of a dataset: the set of examples a rate is
// computed over, together with their binary labels. A Context is immutable
// once constructed; refinements (Subset, And, Or, WherePositive, ...) return
// derived Contexts that share the parent's label storage and never copy the
// underlying data.
//
// Labels follow the {0, 1} convention: a label > 0.5 is a positive example.
type Context struct {
	// labels holds one value per dataset example, shared across all
	// Contexts derived from the same root.
	labels []float64

	// mask marks which examples belong to this slice.
	mask []bool
}

//////
// Factory.
//////

// NewContext creates the root Context over an entire dataset. Every example
// is in the slice.
func NewContext(labels []float64) *Context {
	mask := make([]bool, len(labels))
	for i := range mask {
		mask[i] = true
	}

	return &Context{labels: labels, mask: mask}
}

//////
// Methods.
//////

// Len returns the total number of examples in the underlying dataset,
// regardless of how many are in this slice.
func (c *Context) Len() int {
	return len(c.labels)
}

// Size returns the number of examples in this slice. A rate over a Context
// with Size zero is undefined and evaluates to ErrEmptySlice.
func (c *Context) Size() int {
	n := 0
	for _, in := range c.mask {
		if in {
			n++
		}
	}

	return n
}

// Subset restricts the Context to the examples where mask is true,
// intersected with the current slice. The mask must have one entry per
// dataset example.
//
// Returns ErrLengthMismatch if the mask length differs from the dataset
// size.
func (c *Context) Subset(mask []bool) (*Context, error) {
	if len(mask) != len(c.labels) {
		return nil, ErrLengthMismatch
	}

	derived := make([]bool, len(c.mask))
	for i := range derived {
		derived[i] = c.mask[i] && mask[i]
	}

	return &Context{labels: c.labels, mask: derived}, nil
}

// And intersects two slices of the same dataset.
//
// Returns ErrLengthMismatch if the Contexts are not over datasets of the
// same size.
func (c *Context) And(o *Context) (*Context, error) {
	if len(o.labels) != len(c.labels) {
		return nil, ErrLengthMismatch
	}

	derived := make([]bool, len(c.mask))
	for i := range derived {
		derived[i] = c.mask[i] && o.mask[i]
	}

	return &Context{labels: c.labels, mask: derived}, nil
}

// Or unions two slices of the same dataset.
//
// Returns ErrLengthMismatch if the Contexts are not over datasets of the
// same size.
func (c *Context) Or(o *Context) (*Context, error) {
	if len(o.labels) != len(c.labels) {
		return nil, ErrLengthMismatch
	}

	derived := make([]bool, len(c.mask))
	for i := range derived {
		derived[i] = c.mask[i] || o.mask[i]
	}

	return &Context{labels: c.labels, mask: derived}, nil
}

// WherePositive restricts the slice to positively labeled examples.
func (c *Context) WherePositive() *Context {
	derived := make([]bool, len(c.mask))
	for i := range derived {
		derived[i] = c.mask[i] && c.labels[i] > 0.5
	}

	return &Context{labels: c.labels, mask: derived}
}

// WhereNegative restricts the slice to negatively labeled examples.
func (c *Context) WhereNegative() *Context {
	derived := make([]bool, len(c.mask))
	for i := range derived {
		derived[i] = c.mask[i] && c.labels[i] <= 0.5
	}

	return &Context{labels: c.labels, mask: derived}
}
