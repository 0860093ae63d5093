package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Attributes is the open-ended product_info mapping (brand, gender,
// frameShape, color, power ...). Values are always exposed as strings.
type Attributes map[string]string

// UnmarshalBSONValue accepts legacy documents where product_info values were
// stored as numbers or booleans instead of strings.
func (a *Attributes) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	switch t {
	case bsontype.Null, bsontype.Undefined:
		*a = Attributes{}
		return nil
	case bsontype.EmbeddedDocument:
		elems, err := bson.Raw(data).Elements()
		if err != nil {
			return err
		}
		out := make(Attributes, len(elems))
		for _, elem := range elems {
			value := elem.Value()
			switch value.Type {
			case bsontype.String:
				out[elem.Key()] = value.StringValue()
			case bsontype.Double:
				out[elem.Key()] = strconv.FormatFloat(value.Double(), 'f', -1, 64)
			case bsontype.Int32:
				out[elem.Key()] = strconv.Itoa(int(value.Int32()))
			case bsontype.Int64:
				out[elem.Key()] = strconv.FormatInt(value.Int64(), 10)
			case bsontype.Boolean:
				out[elem.Key()] = strconv.FormatBool(value.Boolean())
			case bsontype.Null, bsontype.Undefined:
				continue
			default:
				out[elem.Key()] = value.String()
			}
		}
		*a = out
		return nil
	default:
		return fmt.Errorf("cannot decode %s into Attributes", t)
	}
}

// MarshalBSONValue always stores a document, never null.
func (a Attributes) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if a == nil {
		return bson.MarshalValue(map[string]string{})
	}
	return bson.MarshalValue(map[string]string(a))
}

// UnmarshalJSON lets admin clients send numeric or boolean attribute values.
func (a *Attributes) UnmarshalJSON(data []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Attributes, len(raw))
	for key, value := range raw {
		switch typed := value.(type) {
		case nil:
			continue
		case string:
			out[key] = strings.TrimSpace(typed)
		case float64:
			out[key] = strconv.FormatFloat(typed, 'f', -1, 64)
		case bool:
			out[key] = strconv.FormatBool(typed)
		default:
			return fmt.Errorf("product_info.%s must be a scalar value", key)
		}
	}
	*a = out
	return nil
}
