package mongostore

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// decodeRaw decodes a BSON document into v through its normalized JSON form.
func decodeRaw(raw bson.Raw, v any) error {
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return err
	}
	data, err := json.Marshal(Normalize(doc))
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// Normalize converts a decoded BSON value to plain JSON values.
func Normalize(v any) any {
	switch val := v.(type) {
	case primitive.ObjectID:
		return val.Hex()
	case primitive.DateTime:
		return val.Time().UTC().Format(time.RFC3339Nano)
	case time.Time:
		return val.UTC().Format(time.RFC3339Nano)
	case primitive.Timestamp:
		return time.Unix(int64(val.T), 0).UTC().Format(time.RFC3339)
	case primitive.Decimal128:
		return json.Number(val.String())
	case primitive.Null, primitive.Undefined:
		return nil
	case primitive.Regex:
		return val.String()
	case primitive.Binary:
		return val.Data
	case bson.M:
		return normalizeMap(val)
	case map[string]any:
		return normalizeMap(val)
	case bson.D:
		out := make(map[string]any, len(val))
		for _, e := range val {
			out[e.Key] = Normalize(e.Value)
		}
		return out
	case bson.A:
		return normalizeSlice(val)
	case []any:
		return normalizeSlice(val)
	case int32:
		return int64(val)
	default:
		return val
	}
}

func normalizeMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = Normalize(v)
	}
	return out
}

func normalizeSlice(s []any) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = Normalize(v)
	}
	return out
}
