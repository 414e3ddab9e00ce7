package db

import "testing"

func catalogIndex() *IndexBuilder {
	return NewIndex("products").
		Prefix("product:").
		Text("name", 3).
		Text("name_variants", 2).
		Text("description", 1).
		Tag("category", "|").
		Numeric("weight_num").
		VectorHNSW("vector", 384, DistanceCosine, 16, 200)
}

func mustBuild(t *testing.T, b *IndexBuilder) *IndexDefinition {
	t.Helper()
	def, err := b.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return def
}

func TestIndexBuilder_Catalog(t *testing.T) {
	idx := mustBuild(t, catalogIndex())

	if len(idx.Fields) != 6 {
		t.Fatalf("fields count = %d, want 6", len(idx.Fields))
	}
	name := idx.Fields[0]
	if name.Type != IndexFieldText || name.TextWeight != 3 || !name.TextNoStem {
		t.Errorf("name field = %+v, want weighted NOSTEM TEXT", name)
	}
	if idx.Fields[3].TagSeparator != "|" {
		t.Errorf("category separator = %q, want |", idx.Fields[3].TagSeparator)
	}
	vec := idx.Fields[5]
	if vec.VectorDim != 384 || vec.VectorM != 16 || vec.VectorEFConstruct != 200 || vec.VectorDistance != DistanceCosine {
		t.Errorf("vector field = %+v", vec)
	}
}

func TestIndexBuilder_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		b    *IndexBuilder
	}{
		{"empty name", NewIndex("").Numeric("x")},
		{"invalid name", NewIndex("bad name!").Numeric("x")},
		{"no fields", NewIndex("idx")},
		{"zero dim", NewIndex("idx").VectorHNSW("v", 0, DistanceCosine, 0, 0)},
		{"negative weight", NewIndex("idx").Text("name", -1)},
		{"duplicate", NewIndex("idx").Numeric("price").Tag("price", "")},
		{"unnamed field", NewIndex("idx").Numeric("")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.b.Build(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestIndexDefinition_String(t *testing.T) {
	got := mustBuild(t, catalogIndex()).String()
	want := "products PREFIX product: SCHEMA name:TEXT^3 name_variants:TEXT^2 description:TEXT^1 " +
		"category:TAG weight_num:NUMERIC vector:VECTOR(384)"
	if got != want {
		t.Errorf("String() =\n%q\nwant\n%q", got, want)
	}
}

func TestIsValidIdentifier(t *testing.T) {
	if !IsValidIdentifier("prefixsearch:products-v2") {
		t.Error("expected valid identifier")
	}
	if IsValidIdentifier("товары") || IsValidIdentifier("") {
		t.Error("non-ASCII and empty identifiers are rejected")
	}
}
