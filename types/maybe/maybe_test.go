package maybe

import (
	"encoding/json"
	"testing"
)

func TestFromPtr(t *testing.T) {
	if m := FromPtr[float64](nil); m.IsValid() {
		t.Errorf("expected nil pointer to be None")
	}

	v := 1.25
	m := FromPtr(&v)
	if !m.IsValid() || m.Value() != 1.25 {
		t.Errorf("expected Some(1.25), got %+v", m)
	}
}

func TestValueOrDefault(t *testing.T) {
	if got := None[int]().ValueOrDefault(7); got != 7 {
		t.Errorf("got %d, wanted 7", got)
	}
	if got := Some(3).ValueOrDefault(7); got != 3 {
		t.Errorf("got %d, wanted 3", got)
	}
}

func TestMarshalJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		A Maybe[bool] `json:"a"`
		B Maybe[bool] `json:"b"`
	}{A: Some(true), B: None[bool]()})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(b) != `{"a":true,"b":null}` {
		t.Errorf("got %s", b)
	}
}

func TestUnmarshalJSON(t *testing.T) {
	var v struct {
		A Maybe[bool] `json:"a"`
		B Maybe[bool] `json:"b"`
		C Maybe[bool] `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"a":false,"b":null}`), &v); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !v.A.IsValid() || v.A.Value() {
		t.Errorf("expected Some(false), got %+v", v.A)
	}
	if v.B.IsValid() || v.C.IsValid() {
		t.Errorf("expected null and missing to be None")
	}
}
