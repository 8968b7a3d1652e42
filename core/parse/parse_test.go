package parse

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/leofalp/jsonmend/core/structural"
)

type person struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

func mustParse(t *testing.T, text string) structural.Value {
	t.Helper()
	value, err := structural.Parse(text)
	if err != nil {
		t.Fatalf("structural.Parse(%q) error = %v", text, err)
	}
	return value
}

func TestInto_Struct(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    person
		wantErr bool
	}{
		{
			name:  "plain object",
			input: `{"name": "Ada", "age": 36}`,
			want:  person{Name: "Ada", Age: 36},
		},
		{
			name:  "schema envelopes",
			input: `{"name": {"type": "string", "value": "Ada"}, "age": {"type": "integer", "value": 36}}`,
			want:  person{Name: "Ada", Age: 36},
		},
		{
			name:    "wrong shape",
			input:   `[1, 2]`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Into[person](mustParse(t, tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Into() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Into() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestInto_Scalars(t *testing.T) {
	if got, err := Into[int](mustParse(t, `42`)); err != nil || got != 42 {
		t.Errorf("Into[int](42) = %v, %v", got, err)
	}
	if got, err := Into[int](mustParse(t, `"42"`)); err != nil || got != 42 {
		t.Errorf(`Into[int]("42") = %v, %v`, got, err)
	}
	if got, err := Into[int](mustParse(t, `{"type": "integer", "value": 7}`)); err != nil || got != 7 {
		t.Errorf("Into[int](envelope) = %v, %v", got, err)
	}
	if got, err := Into[bool](mustParse(t, `"true"`)); err != nil || !got {
		t.Errorf(`Into[bool]("true") = %v, %v`, got, err)
	}
	if got, err := Into[float64](mustParse(t, `"2.5"`)); err != nil || got != 2.5 {
		t.Errorf(`Into[float64]("2.5") = %v, %v`, got, err)
	}
	if got, err := Into[string](mustParse(t, `12345678901234567890`)); err != nil || got != "12345678901234567890" {
		t.Errorf("Into[string](big number) = %v, %v", got, err)
	}
	if got, err := Into[uint8](mustParse(t, `"300"`)); err == nil {
		t.Errorf(`Into[uint8]("300") = %v, expected overflow error`, got)
	}
	if _, err := Into[int](mustParse(t, `"forty-two"`)); err == nil {
		t.Error("expected error for non-numeric text")
	}
}

func TestInto_PassesThroughMatchingTypes(t *testing.T) {
	value := mustParse(t, `{"n": 12345678901234567890}`)
	got, err := Into[map[string]any](value)
	if err != nil {
		t.Fatalf("Into() error = %v", err)
	}
	if got["n"] != json.Number("12345678901234567890") {
		t.Errorf("number precision lost: %#v", got["n"])
	}
}

func TestInto_KeepsLegitimateTypeValueObjectsWhenTheyFit(t *testing.T) {
	type tagged struct {
		Type  string `json:"type"`
		Value int    `json:"value"`
	}
	got, err := Into[tagged](mustParse(t, `{"type": "count", "value": 3}`))
	if err != nil {
		t.Fatalf("Into() error = %v", err)
	}
	if got != (tagged{Type: "count", Value: 3}) {
		t.Errorf("Into() = %+v", got)
	}
}

func TestUnwrapSchemaValues(t *testing.T) {
	input := mustParse(t, `{"list": [{"type": "string", "value": "a"}, 2], "keep": {"type": "x", "value": 1, "extra": true}}`)
	want := mustParse(t, `{"list": ["a", 2], "keep": {"type": "x", "value": 1, "extra": true}}`)

	if got := unwrapSchemaValues(input); !reflect.DeepEqual(got, want) {
		t.Errorf("unwrapSchemaValues() = %#v, want %#v", got, want)
	}
}
