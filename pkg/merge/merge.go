// Package merge deep-merges raw nested maps. It is used to layer inline
// vars over loaded parameter data before a provenance tree is built; merges
// inside the tree itself go through node.Context.MergeUpdate, which carries
// the conflict policy.
package merge

import (
	"fmt"

	"dario.cat/mergo"

	"github.com/paramflow/paramflow/errors"
	"github.com/paramflow/paramflow/pkg/convert"
)

// Merge deep-merges the inputs in order: the first map is the base, the
// last one wins. Inputs are not mutated.
func Merge(inputs []map[string]any) (map[string]any, error) {
	merged := map[string]any{}

	for _, input := range inputs {
		// mergo mutates the destination and may alias sub-maps of the
		// source; copy so callers keep their inputs intact.
		current := convert.DeepCopyMap(input)

		if err := mergo.Merge(&merged, current, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("%w: %w", errors.ErrMerge, err)
		}
	}

	return merged, nil
}
