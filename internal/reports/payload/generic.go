package payload

// Generic is the loosely-typed export payload: an array of records, a single
// record, or a scalar. The set of implementations is closed.
type Generic interface {
	isGeneric()
}

// Rows is an array of records, rendered as a table
type Rows []Record

// Scalar is any value that is neither an array nor a record
type Scalar struct {
	Value any
}

func (Rows) isGeneric()   {}
func (Record) isGeneric() {}
func (Scalar) isGeneric() {}

// rowValueKey names the single column used for array elements that are not records
const rowValueKey = "value"

// AsGeneric classifies a caller-supplied value. Array elements that are not
// records are wrapped into single-column records.
func AsGeneric(v any) Generic {
	if g, ok := v.(Generic); ok {
		return g
	}
	switch t := Normalize(v).(type) {
	case Record:
		return t
	case []any:
		rows := make(Rows, len(t))
		for i, item := range t {
			if rec, ok := item.(Record); ok {
				rows[i] = rec
				continue
			}
			rows[i] = NewRecord(rowValueKey, item)
		}
		return rows
	default:
		return Scalar{Value: t}
	}
}

// DecodeGeneric decodes a JSON document into a Generic payload
func DecodeGeneric(data []byte) (Generic, error) {
	v, err := DecodeValue(data)
	if err != nil {
		return nil, err
	}
	return AsGeneric(v), nil
}
