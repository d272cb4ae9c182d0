package flatdoc

import (
	"reflect"
	"testing"
)

func TestFlatten(t *testing.T) {
	cases := []struct {
		name  string
		value interface{}
		want  []Leaf
	}{
		{
			"scalar",
			"hello",
			[]Leaf{{Path: nil, Value: "hello"}},
		},
		{
			"null",
			nil,
			[]Leaf{{Path: nil, Value: nil}},
		},
		{
			"flat object sorted by key",
			map[string]interface{}{"name": "John", "age": float64(30)},
			[]Leaf{
				{Path: []Segment{Member("age")}, Value: float64(30)},
				{Path: []Segment{Member("name")}, Value: "John"},
			},
		},
		{
			"array",
			[]interface{}{"a", "b"},
			[]Leaf{
				{Path: []Segment{Index(0)}, Value: "a"},
				{Path: []Segment{Index(1)}, Value: "b"},
			},
		},
		{
			"nested mix",
			map[string]interface{}{
				"address": map[string]interface{}{"city": "Oslo"},
				"tags":    []interface{}{"x"},
			},
			[]Leaf{
				{Path: []Segment{Member("address"), Member("city")}, Value: "Oslo"},
				{Path: []Segment{Member("tags"), Index(0)}, Value: "x"},
			},
		},
		{
			"empty containers are terminal",
			map[string]interface{}{
				"emptyObj": map[string]interface{}{},
				"emptyArr": []interface{}{},
			},
			[]Leaf{
				{Path: []Segment{Member("emptyArr")}, Value: []interface{}{}},
				{Path: []Segment{Member("emptyObj")}, Value: map[string]interface{}{}},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Flatten(tc.value)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Flatten = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestNormalizeJSON(t *testing.T) {
	t.Run("struct becomes map", func(t *testing.T) {
		type user struct {
			Name string `json:"name"`
		}
		got, err := normalizeJSON(user{Name: "John"})
		if err != nil {
			t.Fatalf("normalizeJSON failed: %v", err)
		}
		want := map[string]interface{}{"name": "John"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("normalizeJSON = %v, want %v", got, want)
		}
	})

	t.Run("int becomes float64", func(t *testing.T) {
		got, err := normalizeJSON(30)
		if err != nil {
			t.Fatalf("normalizeJSON failed: %v", err)
		}
		if got != float64(30) {
			t.Errorf("normalizeJSON = %v (%T), want float64 30", got, got)
		}
	})

	t.Run("cyclic value fails", func(t *testing.T) {
		cyclic := map[string]interface{}{}
		cyclic["self"] = cyclic
		if _, err := normalizeJSON(cyclic); !IsPermanent(err) {
			t.Fatalf("expected ErrNotJSON, got %v", err)
		}
	})

	t.Run("channel fails", func(t *testing.T) {
		if _, err := normalizeJSON(make(chan int)); err == nil {
			t.Fatal("expected error for channel value")
		}
	})
}
