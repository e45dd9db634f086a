package resolver

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paramflow/paramflow/errors"
	"github.com/paramflow/paramflow/pkg/filesystem"
	"github.com/paramflow/paramflow/pkg/loader"
	"github.com/paramflow/paramflow/pkg/schema"
)

func testResolve(t *testing.T, fsys filesystem.FileSystem, wdir string, data map[string]any) map[string]any {
	t.Helper()

	r, err := New(fsys, loader.Defaults(), schema.NewConfiguration(), wdir, data)
	require.NoError(t, err)

	resolved, err := r.Resolve()
	require.NoError(t, err)
	return resolved
}

func stage(t *testing.T, resolved map[string]any, name string) map[string]any {
	t.Helper()

	stages, ok := resolved["stages"].(map[string]any)
	require.True(t, ok)
	body, ok := stages[name].(map[string]any)
	require.True(t, ok, "stage %q not in %v", name, stages)
	return body
}

func TestResolveStage(t *testing.T) {
	fsys := filesystem.NewMemory().
		WriteFile("params.yaml", []byte("models:\n  us:\n    thresh: 10\n"))

	resolved := testResolve(t, fsys, "", map[string]any{
		"stages": map[string]any{
			"train": map[string]any{
				"cmd": "python train.py --thresh ${models.us.thresh}",
			},
		},
	})

	train := stage(t, resolved, "train")
	assert.Equal(t, "python train.py --thresh 10", train["cmd"])
	assert.Equal(t, []any{
		map[string]any{"params.yaml": []any{"models.us.thresh"}},
	}, train["params"])
}

func TestResolveGolden(t *testing.T) {
	fsys := filesystem.NewMemory().
		WriteFile("params.yaml", []byte("models:\n  us:\n    thresh: 10\n"))

	resolved := testResolve(t, fsys, "", map[string]any{
		"vars": map[string]any{"prefix": "python"},
		"stages": map[string]any{
			"train": map[string]any{
				"cmd": "${prefix} train.py --thresh ${models.us.thresh}",
			},
		},
	})

	encoded, err := json.MarshalIndent(resolved, "", "  ")
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "resolve", append(encoded, '\n'))
}

func TestResolveVarsOverrideAndStayUntracked(t *testing.T) {
	fsys := filesystem.NewMemory().
		WriteFile("params.yaml", []byte("lr: 0.1\n"))

	resolved := testResolve(t, fsys, "", map[string]any{
		"vars": map[string]any{"lr": 0.2},
		"stages": map[string]any{
			"train": map[string]any{"cmd": "train --lr ${lr}"},
		},
	})

	train := stage(t, resolved, "train")
	assert.Equal(t, "train --lr 0.2", train["cmd"])
	// Inline vars carry no file provenance.
	assert.NotContains(t, train, "params")
}

func TestResolveVarsLayers(t *testing.T) {
	resolved := testResolve(t, filesystem.NewMemory(), "", map[string]any{
		"vars": []any{
			map[string]any{"lr": 0.1, "train": map[string]any{"batch": int64(32), "epochs": int64(3)}},
			map[string]any{"lr": 0.2, "train": map[string]any{"batch": int64(64)}},
		},
		"stages": map[string]any{
			"train": map[string]any{
				"cmd": "train --lr ${lr} --batch ${train.batch} --epochs ${train.epochs}",
			},
		},
	})

	// Later layers win key by key; untouched nested keys survive.
	assert.Equal(t, "train --lr 0.2 --batch 64 --epochs 3", stage(t, resolved, "train")["cmd"])
}

func TestResolveVarsErrors(t *testing.T) {
	tests := []struct {
		name    string
		vars    any
		message string
	}{
		{
			name:    "vars is a scalar",
			vars:    "lr: 0.1",
			message: "'vars' must be a mapping or a list of mappings",
		},
		{
			name:    "vars list holds a scalar",
			vars:    []any{map[string]any{"lr": 0.1}, "batch"},
			message: "'vars' entries must be mappings",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(filesystem.NewMemory(), loader.Defaults(), schema.NewConfiguration(), "", map[string]any{
				"vars":   tt.vars,
				"stages": map[string]any{"train": map[string]any{"cmd": "x"}},
			})
			assert.ErrorIs(t, err, errors.ErrInvalidDefinition)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestResolveWithoutParamsFile(t *testing.T) {
	resolved := testResolve(t, filesystem.NewMemory(), "", map[string]any{
		"vars": map[string]any{"name": "model.pkl"},
		"stages": map[string]any{
			"train": map[string]any{"cmd": "train -o ${name}"},
		},
	})

	assert.Equal(t, "train -o model.pkl", stage(t, resolved, "train")["cmd"])
}

func TestResolveUseFile(t *testing.T) {
	fsys := filesystem.NewMemory().
		WriteFile("config.toml", []byte("thresh = 15\n"))

	resolved := testResolve(t, fsys, "", map[string]any{
		"use": "config.toml",
		"stages": map[string]any{
			"train": map[string]any{"cmd": "train --thresh ${thresh}"},
		},
	})

	train := stage(t, resolved, "train")
	assert.Equal(t, "train --thresh 15", train["cmd"])
	assert.Equal(t, []any{
		map[string]any{"config.toml": []any{"thresh"}},
	}, train["params"])
}

func TestResolveSet(t *testing.T) {
	fsys := filesystem.NewMemory().
		WriteFile("params.yaml", []byte("models:\n  us:\n    thresh: 10\n"))

	resolved := testResolve(t, fsys, "", map[string]any{
		"stages": map[string]any{
			"eval": map[string]any{
				"set": map[string]any{"thresh": "${models.us.thresh}", "plain": int64(7)},
				"cmd": "eval --thresh ${thresh} --n ${plain}",
			},
		},
	})

	eval := stage(t, resolved, "eval")
	assert.Equal(t, "eval --thresh 10 --n 7", eval["cmd"])
	// The set block is consumed, not echoed into the resolved stage.
	assert.NotContains(t, eval, "set")
}

func TestResolveStageWdirParams(t *testing.T) {
	fsys := filesystem.NewMemory().
		WriteFile("params.yaml", []byte("lr: 0.1\n")).
		WriteFile("training/params.yaml", []byte("lr: 0.5\n"))

	resolved := testResolve(t, fsys, "", map[string]any{
		"stages": map[string]any{
			"train": map[string]any{
				"wdir": "training",
				"cmd":  "train --lr ${lr}",
			},
		},
	})

	train := stage(t, resolved, "train")
	// The stage wdir's own params file wins over the global one.
	assert.Equal(t, "train --lr 0.5", train["cmd"])
	assert.Equal(t, []any{
		map[string]any{"training/params.yaml": []any{"lr"}},
	}, train["params"])
}

func TestResolveExtraParamsFiles(t *testing.T) {
	fsys := filesystem.NewMemory().
		WriteFile("params.yaml", []byte("lr: 0.1\n")).
		WriteFile("extra.json", []byte(`{"batch": 32}`))

	resolved := testResolve(t, fsys, "", map[string]any{
		"stages": map[string]any{
			"train": map[string]any{
				"params": []any{map[string]any{"extra.json": []any{"batch"}}},
				"cmd":    "train --lr ${lr} --batch ${batch}",
			},
		},
	})

	train := stage(t, resolved, "train")
	assert.Equal(t, "train --lr 0.1 --batch 32", train["cmd"])
	assert.Equal(t, []any{
		map[string]any{"extra.json": []any{"batch"}},
		map[string]any{"params.yaml": []any{"lr"}},
		map[string]any{"extra.json": []any{"batch"}},
	}, train["params"])
}

func TestForeachList(t *testing.T) {
	resolved := testResolve(t, filesystem.NewMemory(), "", map[string]any{
		"vars": map[string]any{"models": []any{"us", "de"}},
		"stages": map[string]any{
			"prep": map[string]any{
				"foreach": "${models}",
				"in":      map[string]any{"cmd": "prep ${item}"},
			},
		},
	})

	assert.Equal(t, "prep us", stage(t, resolved, "prep-us")["cmd"])
	assert.Equal(t, "prep de", stage(t, resolved, "prep-de")["cmd"])
}

func TestForeachMap(t *testing.T) {
	fsys := filesystem.NewMemory().
		WriteFile("params.yaml", []byte("models:\n  us:\n    thresh: 10\n  de:\n    thresh: 5\n"))

	resolved := testResolve(t, fsys, "", map[string]any{
		"stages": map[string]any{
			"build": map[string]any{
				"foreach": "${models}",
				"in":      map[string]any{"cmd": "build ${key} --thresh ${item.thresh}"},
			},
		},
	})

	assert.Equal(t, "build us --thresh 10", stage(t, resolved, "build-us")["cmd"])
	assert.Equal(t, "build de --thresh 5", stage(t, resolved, "build-de")["cmd"])
}

func TestForeachNonStringSuffixes(t *testing.T) {
	resolved := testResolve(t, filesystem.NewMemory(), "", map[string]any{
		"vars": map[string]any{
			"threshes": []any{int64(10), int64(5)},
			"configs":  []any{map[string]any{"x": int64(1)}},
		},
		"stages": map[string]any{
			"sweep": map[string]any{
				"foreach": "${threshes}",
				"in":      map[string]any{"cmd": "run --thresh ${item}"},
			},
			"apply": map[string]any{
				"foreach": "${configs}",
				"in":      map[string]any{"cmd": "apply --x ${item.x}"},
			},
		},
	})

	// Numeric items name stages by value, composite items by index.
	assert.Equal(t, "run --thresh 10", stage(t, resolved, "sweep-10")["cmd"])
	assert.Equal(t, "run --thresh 5", stage(t, resolved, "sweep-5")["cmd"])
	assert.Equal(t, "apply --x 1", stage(t, resolved, "apply-0")["cmd"])
}

func TestResolveErrors(t *testing.T) {
	fsys := filesystem.NewMemory().WriteFile("params.yaml", []byte("lr: 0.1\n"))

	tests := []struct {
		name    string
		data    map[string]any
		message string
	}{
		{
			name:    "stage not a mapping",
			data:    map[string]any{"stages": map[string]any{"train": "cmd"}},
			message: "stage 'train' is not a mapping",
		},
		{
			name: "foreach without in",
			data: map[string]any{"stages": map[string]any{
				"train": map[string]any{"foreach": "${lr}"},
			}},
			message: "'foreach' without 'in'",
		},
		{
			name: "foreach over a scalar",
			data: map[string]any{"stages": map[string]any{
				"train": map[string]any{
					"foreach": "${lr}",
					"in":      map[string]any{"cmd": "x"},
				},
			}},
			message: "expected a list or a mapping",
		},
		{
			name: "foreach expression not a string",
			data: map[string]any{"stages": map[string]any{
				"train": map[string]any{
					"foreach": int64(3),
					"in":      map[string]any{"cmd": "x"},
				},
			}},
			message: "must be a template string",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New(fsys, loader.Defaults(), schema.NewConfiguration(), "", tt.data)
			require.NoError(t, err)

			_, err = r.Resolve()
			assert.ErrorIs(t, err, errors.ErrInvalidDefinition)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestResolveUnknownReferenceNamesStage(t *testing.T) {
	fsys := filesystem.NewMemory().WriteFile("params.yaml", []byte("lr: 0.1\n"))

	r, err := New(fsys, loader.Defaults(), schema.NewConfiguration(), "", map[string]any{
		"stages": map[string]any{
			"train": map[string]any{"cmd": "train --epochs ${epochs}"},
		},
	})
	require.NoError(t, err)

	_, err = r.Resolve()
	assert.ErrorIs(t, err, errors.ErrLookup)
	assert.Contains(t, err.Error(), "failed to resolve stage 'train'")
	assert.Contains(t, err.Error(), "failed to interpolate '${epochs}'")
}

func TestResolveKeepsInputIntact(t *testing.T) {
	fsys := filesystem.NewMemory().WriteFile("params.yaml", []byte("lr: 0.1\n"))

	data := map[string]any{
		"stages": map[string]any{
			"train": map[string]any{"cmd": "train --lr ${lr}"},
		},
	}

	_ = testResolve(t, fsys, "", data)

	assert.Equal(t, "train --lr ${lr}",
		data["stages"].(map[string]any)["train"].(map[string]any)["cmd"])
}
