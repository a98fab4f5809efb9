package filters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stencilerrors "github.com/stencilkit/stencil/internal/errors"
)

func TestPascalCase(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"test_name", "TestName"},
		{"http-client", "HttpClient"},
		{"already", "Already"},
		{"TestName", "TestName"},
		{"HTTPServer", "HTTPServer"},
		{"order_item_v2", "OrderItemV2"},
		{"", ""},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, PascalCase(tc.in))
		})
	}
}

func TestSnakeCase(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"TestName", "test_name"},
		{"testName", "test_name"},
		{"HTTPServer", "http_server"},
		{"kebab-input", "kebab_input"},
		{"already_snake", "already_snake"},
		{"", ""},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, SnakeCase(tc.in))
		})
	}
}

func TestKebabCase(t *testing.T) {
	assert.Equal(t, "test-name", KebabCase("TestName"))
	assert.Equal(t, "http-server", KebabCase("HTTPServer"))
	assert.Equal(t, "from-snake", KebabCase("from_snake"))
}

func TestValidateIdentifier(t *testing.T) {
	out, err := ValidateIdentifier("valid_name2")
	require.NoError(t, err)
	assert.Equal(t, "valid_name2", out)

	_, err = ValidateIdentifier("123bad")
	require.Error(t, err)
	assert.True(t, stencilerrors.IsType(err, stencilerrors.ErrorTypeValidation))

	_, err = ValidateIdentifier("has space")
	assert.Error(t, err)

	_, err = ValidateIdentifier("")
	assert.Error(t, err)

	_, err = ValidateIdentifier("dash-not-allowed")
	assert.Error(t, err)
}

func TestIsIdentifier(t *testing.T) {
	assert.True(t, IsIdentifier("_private"))
	assert.True(t, IsIdentifier("x"))
	assert.False(t, IsIdentifier("9lives"))
	assert.False(t, IsIdentifier("a.b"))
}
