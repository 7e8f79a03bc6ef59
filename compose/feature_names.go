package compose

import (
	"regexp"
	"strconv"

	"github.com/nikronic/niklib/pkg/errors"
)

var opaqueFeatureName = regexp.MustCompile(`^x(\d+)`)

// TransformedFeatureNames maps the fitted executor's output feature names
// back onto the original column names. Index-typed steps emit opaque
// "x<pos>"-based names such as "x1_male"; given the original frame column
// names, position 1 resolves to e.g. "sex" and the name becomes "sex_male".
// Name-typed steps already carry real column names and pass through
// unchanged.
//
// The full leading position is parsed, so "x12" never resolves through
// position 1. An opaque name whose position is outside originalNames is
// kept as is and reported through the warning hook.
func TransformedFeatureNames(ct *ColumnTransformer, originalNames []string) ([]string, error) {
	generated, err := ct.FeatureNamesOut()
	if err != nil {
		return nil, err
	}

	out := make([]string, len(generated))
	for i, name := range generated {
		out[i] = name
		m := opaqueFeatureName.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		pos, err := strconv.Atoi(m[1])
		if err != nil || pos >= len(originalNames) {
			errors.Warn(errors.NewFeatureNameWarning(name))
			continue
		}
		out[i] = originalNames[pos] + name[len(m[0]):]
	}
	return out, nil
}
