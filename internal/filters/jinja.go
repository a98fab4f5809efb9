package filters

import (
	"fmt"

	"github.com/deicod/gojinja/runtime"
)

// Register installs the scaffolding filters on a gojinja environment under
// their template-facing names. Built-in filters (default, upper, join, ...)
// are untouched.
func Register(env *runtime.Environment) {
	env.AddFilter("pascal_case", stringFilter(PascalCase))
	env.AddFilter("snake_case", stringFilter(SnakeCase))
	env.AddFilter("kebab_case", stringFilter(KebabCase))
	env.AddFilter("identifier", func(_ *runtime.Context, value interface{}, _ ...interface{}) (interface{}, error) {
		return ValidateIdentifier(asString(value))
	})
}

func stringFilter(fn func(string) string) runtime.FilterFunc {
	return func(_ *runtime.Context, value interface{}, _ ...interface{}) (interface{}, error) {
		return fn(asString(value)), nil
	}
}

func asString(value interface{}) string {
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}
