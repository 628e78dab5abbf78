package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTypeRef(t *testing.T) {
	tests := []struct {
		src  string
		name string
		dims int
		args int
	}{
		{"int", "int", 0, 0},
		{"String[]", "String", 1, 0},
		{"java.util.Map<String, List<int[]>>[][]", "java.util.Map", 2, 2},
		{"String...", "String", 1, 0},
		{"Map.Entry<K, V>", "Map.Entry", 0, 2},
		{"Outer<T>.Inner", "Outer.Inner", 0, 0},
		{"@NonNull String", "String", 0, 0},
		{"List<? extends Number>", "List", 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			ref := ParseTypeRef(tt.src)
			assert.Equal(t, tt.name, ref.Name)
			assert.Equal(t, tt.dims, ref.Dims)
			assert.Len(t, ref.Args, tt.args)
		})
	}
}

func TestParseTypeRef_Wildcards(t *testing.T) {
	ref := ParseTypeRef("Map<?, ? extends Number>")
	require.Len(t, ref.Args, 2)
	assert.Equal(t, "Object", ref.Args[0].Name)
	assert.Equal(t, "Number", ref.Args[1].Name)
}

func TestParseTypeRef_Malformed(t *testing.T) {
	ref := ParseTypeRef("List<[>")
	assert.Equal(t, "List", ref.Name)
}

func TestTypeRef_String(t *testing.T) {
	assert.Equal(t, "java.util.Map.Entry", ParseTypeRef("java.util.Map.Entry<K, V>").String())
	assert.Equal(t, "String[][]", ParseTypeRef("String[][]").String())
}
