package draft

import (
	"context"

	"github.com/roach88/draft/internal/value"
)

// The package-level functions run on a fresh engine with DefaultConfig.
// Use New for auto-freeze, detection, logging or observer settings.

// Produce runs recipe over a draft of base. See Engine.Produce.
func Produce(base value.Value, recipe Recipe, opts ...ProduceOption) (value.Value, error) {
	return New().Produce(base, recipe, opts...)
}

// ProduceResult runs a recipe that may replace the state. See
// Engine.ProduceResult.
func ProduceResult(base value.Value, recipe ResultRecipe, opts ...ProduceOption) (Result, error) {
	return New().ProduceResult(base, recipe, opts...)
}

// ProduceContext runs a recipe that observes ctx. See Engine.ProduceContext.
func ProduceContext(ctx context.Context, base value.Value, recipe ContextRecipe, opts ...ProduceOption) (Result, error) {
	return New().ProduceContext(ctx, base, recipe, opts...)
}

// ProduceWithPatches runs recipe and returns the patches alongside the
// result. See Engine.ProduceWithPatches.
func ProduceWithPatches(base value.Value, recipe Recipe) (value.Value, []Patch, []Patch, error) {
	return New().ProduceWithPatches(base, recipe)
}

// CreateDraft opens a manual transaction. See Engine.CreateDraft.
func CreateDraft(base value.Value) (*Draft, error) {
	return New().CreateDraft(base)
}

// FinishDraft ends a manual transaction on the engine that created d.
func FinishDraft(d *Draft, opts ...ProduceOption) (value.Value, error) {
	if d == nil {
		return nil, newError(ErrCodeInvalidValue, "nil draft")
	}
	return d.scope.engine.FinishDraft(d, opts...)
}

// ApplyPatches replays patches onto base. See Engine.ApplyPatches.
func ApplyPatches(base value.Value, patches []Patch) (value.Value, error) {
	if d, ok := base.(*Draft); ok {
		return d.scope.engine.ApplyPatches(d, patches)
	}
	return New().ApplyPatches(base, patches)
}
