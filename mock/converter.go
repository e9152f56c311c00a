package mock

import "github.com/fwojciec/reblog"

var _ reblog.Converter = (*Converter)(nil)

// Converter is a mock implementation of reblog.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
