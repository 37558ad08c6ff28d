package rpc

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/types/known/structpb"
)

// #region request-fields
func stringField(in *structpb.Struct, key string) string {
	if v, ok := in.GetFields()[key]; ok {
		return v.GetStringValue()
	}
	return ""
}

func boolField(in *structpb.Struct, key string) bool {
	if v, ok := in.GetFields()[key]; ok {
		return v.GetBoolValue()
	}
	return false
}

func numberField(in *structpb.Struct, key string) float64 {
	if v, ok := in.GetFields()[key]; ok {
		return v.GetNumberValue()
	}
	return 0
}

func hasField(in *structpb.Struct, key string) bool {
	_, ok := in.GetFields()[key]
	return ok
}

// #endregion request-fields

// #region response-values
func floatList(v []float64) []interface{} {
	out := make([]interface{}, len(v))
	for i, f := range v {
		out[i] = f
	}
	return out
}

func intList(v []int) []interface{} {
	out := make([]interface{}, len(v))
	for i, n := range v {
		out[i] = n
	}
	return out
}

func stringList(v []string) []interface{} {
	out := make([]interface{}, len(v))
	for i, s := range v {
		out[i] = s
	}
	return out
}

func newStruct(m map[string]interface{}) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	return s, nil
}

// #endregion response-values

// #region response-decoding
func floatsOf(v *structpb.Value) []float64 {
	list := v.GetListValue().GetValues()
	out := make([]float64, len(list))
	for i, item := range list {
		out[i] = item.GetNumberValue()
	}
	return out
}

func intsOf(v *structpb.Value) []int {
	list := v.GetListValue().GetValues()
	out := make([]int, len(list))
	for i, item := range list {
		out[i] = int(math.Round(item.GetNumberValue()))
	}
	return out
}

func stringsOf(v *structpb.Value) []string {
	list := v.GetListValue().GetValues()
	out := make([]string, len(list))
	for i, item := range list {
		out[i] = item.GetStringValue()
	}
	return out
}

// #endregion response-decoding
