package pricing

import (
	"fmt"

	"github.com/icodeforyou/spotprice-go/types"
)

// ErrNoData is returned when the price source has nothing for the requested date.
var ErrNoData = types.ErrNoData

// InvalidSampleError reports a malformed upstream sample. It is fatal for the
// assembly of that date.
type InvalidSampleError struct {
	Index  int
	Reason string
}

func (e *InvalidSampleError) Error() string {
	return fmt.Sprintf("invalid price sample #%d: %s", e.Index, e.Reason)
}
