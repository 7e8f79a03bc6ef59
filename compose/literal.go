package compose

import (
	"strconv"
	"strings"

	"github.com/nikronic/niklib/dataframe"
	"github.com/nikronic/niklib/pkg/errors"
)

// parseLiteral parses one configuration value. Config files carry every
// field as a literal-expression string in the original Python spelling,
// e.g. "'numeric'", "np.float32", "None", "True", "0.25". Only primitive
// literals are understood; arbitrary expressions are rejected rather than
// evaluated.
//
// The result is nil, a bool, a string, an int64, a float64 or a
// dataframe.Dtype.
func parseLiteral(raw string) (interface{}, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, errors.NewValidationError("literal", "empty literal", raw)
	}

	switch s {
	case "None", "null":
		return nil, nil
	case "True", "true":
		return true, nil
	case "False", "false":
		return false, nil
	}

	// Quoted strings, either Python-style single quotes or double quotes.
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '\'' && last == '\'') || (first == '"' && last == '"') {
			return s[1 : len(s)-1], nil
		}
	}

	// Bare dtype identifiers, e.g. np.float32 or int64.
	if dtype, err := dataframe.ParseDtype(s); err == nil {
		return dtype, nil
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, nil
	}

	return nil, errors.NewValidationError(
		"literal", "not a recognized primitive literal", raw)
}

// dtypesFromLiteral converts a parsed literal in a dtype position to a
// dtype list. nil literals mean "no dtype filter"; strings such as
// "category" are resolved through dataframe.ParseDtype.
func dtypesFromLiteral(field string, value interface{}) ([]dataframe.Dtype, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case dataframe.Dtype:
		return []dataframe.Dtype{v}, nil
	case string:
		dtype, err := dataframe.ParseDtype(v)
		if err != nil {
			return nil, err
		}
		return []dataframe.Dtype{dtype}, nil
	default:
		return nil, errors.NewValidationError(
			field, "must be a dtype literal or None", value)
	}
}

// stringFromLiteral converts a parsed literal in a pattern position to a
// string; nil means the empty pattern.
func stringFromLiteral(field string, value interface{}) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		return "", errors.NewValidationError(
			field, "must be a string literal or None", value)
	}
}

// boolFromLiteral converts a parsed literal in a flag position to a bool.
func boolFromLiteral(field string, value interface{}) (bool, error) {
	v, ok := value.(bool)
	if !ok {
		return false, errors.NewValidationError(
			field, "must be a boolean literal", value)
	}
	return v, nil
}
