package models

import (
	"fmt"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Amount is a stored price. It is written as a double but also decodes
// legacy int and Decimal128 values.
type Amount float64

func (a *Amount) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	value := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.Double:
		*a = Amount(value.Double())
	case bsontype.Int32:
		*a = Amount(value.Int32())
	case bsontype.Int64:
		*a = Amount(value.Int64())
	case bsontype.Decimal128:
		f, err := strconv.ParseFloat(value.Decimal128().String(), 64)
		if err != nil {
			return fmt.Errorf("price: %w", err)
		}
		*a = Amount(f)
	case bsontype.Null, bsontype.Undefined:
		*a = 0
	default:
		return fmt.Errorf("price: cannot decode %s", t)
	}
	return nil
}
