package product

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/homeshopping/homeshopping-backend/pkg/db/models"
	"github.com/homeshopping/homeshopping-backend/pkg/enums"
)

func TestParseAttributeValue(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		typ     enums.AttributeType
		raw     string
		want    AttributeValue
		wantErr bool
	}{
		{name: "text", typ: enums.AttributeTypeText, raw: `"red"`, want: TextValue("red")},
		{name: "integer", typ: enums.AttributeTypeInteger, raw: `42`, want: IntegerValue(42)},
		{name: "integer from string", typ: enums.AttributeTypeInteger, raw: `"42"`, wantErr: true},
		{name: "text from number", typ: enums.AttributeTypeText, raw: `42`, wantErr: true},
		{name: "unknown type", typ: "float", raw: `1.5`, wantErr: true},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseAttributeValue(tc.typ, json.RawMessage(tc.raw))
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestStoreAndLoadValue(t *testing.T) {
	t.Parallel()

	row := models.ProductAttributeValue{}
	storeValue(&row, IntegerValue(5))
	require.Nil(t, row.ValueText)
	require.NotNil(t, row.ValueInteger)

	got, ok := loadValue(enums.AttributeTypeInteger, row)
	require.True(t, ok)
	require.Equal(t, "5", got.Render())

	_, ok = loadValue(enums.AttributeTypeText, row)
	require.False(t, ok)

	storeValue(&row, TextValue("blue"))
	require.Nil(t, row.ValueInteger)
	row.Attribute = &models.ProductAttribute{Type: enums.AttributeTypeText}
	require.Equal(t, "blue", RenderAttributeValue(row))
}

func TestCheckValueType(t *testing.T) {
	t.Parallel()

	attr := models.ProductAttribute{Code: "weight", Type: enums.AttributeTypeInteger}
	require.NoError(t, checkValueType(attr, IntegerValue(3)))
	require.Error(t, checkValueType(attr, TextValue("3")))
	require.Error(t, checkValueType(attr, nil))
}
