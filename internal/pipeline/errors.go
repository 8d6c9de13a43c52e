package pipeline

import "fmt"

// MultipleObjectsError reports an asset containing more than one
// independent geometry. The loader never picks one arbitrarily.
type MultipleObjectsError struct {
	Count int
}

func (e *MultipleObjectsError) Error() string {
	return fmt.Sprintf("asset contains %d independent geometries", e.Count)
}

// InvalidTypeError reports that the loaded object is not a polygonal
// mesh after normalization.
type InvalidTypeError struct {
	Actual string
}

func (e *InvalidTypeError) Error() string {
	return fmt.Sprintf("loaded object is not a polygonal mesh (got %s)", e.Actual)
}
