package driver

import "thetac/internal/diag"

// AddError records d in the run's error bag.
func (c *Compiler) AddError(d diag.Diagnostic) {
	c.bag.Add(d)
}

// Errors returns every recorded diagnostic in the order it was added.
func (c *Compiler) Errors() []diag.Diagnostic {
	return c.bag.Items()
}

// ClearErrors empties the error bag. Safe to call any number of times.
func (c *Compiler) ClearErrors() {
	c.bag.Clear()
}

// HasErrors reports whether an error-severity diagnostic was recorded.
func (c *Compiler) HasErrors() bool {
	return c.bag.HasErrors()
}
