package ir

import (
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ToBSON converts an IRValue into the value shapes the MongoDB Go driver
// accepts. IRDocument becomes bson.D so key order survives encoding, IRArray
// becomes bson.A and IRNull becomes nil.
func ToBSON(v IRValue) (any, error) {
	switch val := v.(type) {
	case IRNull:
		return nil, nil
	case IRString:
		return string(val), nil
	case IRInt:
		return int64(val), nil
	case IRFloat:
		return float64(val), nil
	case IRBool:
		return bool(val), nil
	case IRArray:
		arr := make(bson.A, len(val))
		for i, elem := range val {
			b, err := ToBSON(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			arr[i] = b
		}
		return arr, nil
	case IRDocument:
		return DocumentToBSON(val)
	default:
		return nil, fmt.Errorf("unknown IRValue type: %T", v)
	}
}

// DocumentToBSON converts an IRDocument into an ordered bson.D.
func DocumentToBSON(doc IRDocument) (bson.D, error) {
	d := make(bson.D, 0, len(doc))
	for _, e := range doc {
		b, err := ToBSON(e.Value)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", e.Key, err)
		}
		d = append(d, bson.E{Key: e.Key, Value: b})
	}
	return d, nil
}
