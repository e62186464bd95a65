package manifest

import "bytes"

// Vectorized is a slice that accepts either a bare T or an array of T on the
// wire, collapsing back to a bare value when it holds exactly one element
// (spec.md §3: "accept a bare string, a flat array of strings, or an array
// of string-arrays; all normalize to Vec<Vec<String>>" generalized to any
// element type T).
type Vectorized[T any] []T

func (v *Vectorized[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		*v = nil
		return nil
	}
	if trimmed[0] == '[' {
		var arr []T
		if err := json.Unmarshal(data, &arr); err != nil {
			return err
		}
		*v = Vectorized[T](arr)
		return nil
	}
	var single T
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*v = Vectorized[T]{single}
	return nil
}

func (v Vectorized[T]) MarshalJSON() ([]byte, error) {
	switch len(v) {
	case 0:
		return []byte("null"), nil
	case 1:
		return json.Marshal(v[0])
	default:
		return json.Marshal([]T(v))
	}
}

// Slice is a convenience conversion to a plain []T.
func (v Vectorized[T]) Slice() []T { return []T(v) }
