package model_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/uxlens/pkg/domain/model"
)

func TestMetadata_PreservesKeyOrder(t *testing.T) {
	var m model.Metadata
	gt.NoError(t, json.Unmarshal([]byte(`{"zeta":1,"alpha":"a","mid":{"y":true,"x":null}}`), &m)).Required()

	gt.Value(t, m.Keys()).Equal([]string{"zeta", "alpha", "mid"})

	data, err := json.Marshal(&m)
	gt.NoError(t, err).Required()
	gt.Value(t, string(data)).Equal(`{"zeta":1,"alpha":"a","mid":{"y":true,"x":null}}`)
}

func TestMetadata_SetKeepsPosition(t *testing.T) {
	m := model.NewMetadata()
	m.Set("a", model.NumberValue(1))
	m.Set("b", model.NumberValue(2))
	m.Set("a", model.NumberValue(3))

	gt.Value(t, m.Keys()).Equal([]string{"a", "b"})
	n, ok := m.Number("a")
	gt.Bool(t, ok).True()
	gt.Value(t, n).Equal(3.0)

	m.Delete("a")
	gt.Value(t, m.Keys()).Equal([]string{"b"})
	gt.Bool(t, m.Has("a")).False()
}

func TestMetadata_NilIsEmpty(t *testing.T) {
	var m *model.Metadata
	gt.Value(t, m.Len()).Equal(0)
	_, ok := m.Get("x")
	gt.Bool(t, ok).False()
	_, ok = m.Text("x")
	gt.Bool(t, ok).False()
}

func TestMetadata_RejectsNonObject(t *testing.T) {
	var m model.Metadata
	gt.Value(t, json.Unmarshal([]byte(`[1,2]`), &m)).NotNil()
}

func TestMetadata_CloneIsDeep(t *testing.T) {
	inner := model.NewMetadata()
	inner.Set("k", model.StringValue("v"))
	m := model.NewMetadata()
	m.Set("nested", model.MapValue(inner))

	c := m.Clone()
	inner.Set("k", model.StringValue("changed"))

	v, _ := c.Get("nested")
	nested, ok := v.AsMap()
	gt.Bool(t, ok).True()
	s, _ := nested.Text("k")
	gt.Value(t, s).Equal("v")
}

func TestValue_Accessors(t *testing.T) {
	tests := []struct {
		name    string
		value   model.Value
		text    string
		number  float64
		numeric bool
	}{
		{name: "integer number", value: model.NumberValue(6000), text: "6000", number: 6000, numeric: true},
		{name: "fractional number", value: model.NumberValue(2.5), text: "2.5", number: 2.5, numeric: true},
		{name: "numeric string", value: model.StringValue(" 4.4 "), text: " 4.4 ", number: 4.4, numeric: true},
		{name: "plain string", value: model.StringValue("button"), text: "button"},
		{name: "bool", value: model.BoolValue(true), text: "true"},
		{name: "null", value: model.NullValue(), text: ""},
		{name: "array", value: model.ArrayValue(model.NumberValue(1), model.StringValue("x")), text: `[1,"x"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, tt.value.Text()).Equal(tt.text)
			n, ok := tt.value.AsNumber()
			gt.Value(t, ok).Equal(tt.numeric)
			if tt.numeric {
				gt.Value(t, n).Equal(tt.number)
			}
		})
	}
}

func TestFromAny(t *testing.T) {
	v := model.FromAny(map[string]any{
		"b": []any{1.0, "two"},
		"a": map[string]any{"c": nil},
	})

	m, ok := v.AsMap()
	gt.Bool(t, ok).True()
	gt.Value(t, m.Keys()).Equal([]string{"a", "b"})

	data, err := json.Marshal(v)
	gt.NoError(t, err).Required()
	gt.Value(t, string(data)).Equal(`{"a":{"c":null},"b":[1,"two"]}`)
}

func TestValue_AsNumber(t *testing.T) {
	tests := []struct {
		name  string
		value model.Value
		want  float64
		ok    bool
	}{
		{name: "number", value: model.NumberValue(6000), want: 6000, ok: true},
		{name: "numeric text", value: model.StringValue(" 2.5 "), want: 2.5, ok: true},
		{name: "text", value: model.StringValue("slow"), ok: false},
		{name: "NaN text", value: model.StringValue("NaN"), ok: false},
		{name: "Inf text", value: model.StringValue("Inf"), ok: false},
		{name: "NaN number", value: model.NumberValue(math.NaN()), ok: false},
		{name: "bool", value: model.BoolValue(true), ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.value.AsNumber()
			gt.Value(t, ok).Equal(tt.ok)
			gt.Value(t, got).Equal(tt.want)
		})
	}
}
