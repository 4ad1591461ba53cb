package gorm

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vitalplate/v1/internal/domain/generation"
	"github.com/vitalplate/v1/internal/ports/outbound"
	"github.com/vitalplate/v1/pkg/errors"
)

// RecipeRepository implements the recipe store interface using GORM
type RecipeRepository struct {
	db *gorm.DB
}

// NewRecipeRepository creates a new recipe repository
func NewRecipeRepository(db *gorm.DB) outbound.RecipeStore {
	return &RecipeRepository{db: db}
}

// Save upserts a recipe by its target, so regenerating a meal replaces the
// stored recipe instead of accumulating duplicates
func (r *RecipeRepository) Save(ctx context.Context, recipe *generation.Recipe) error {
	model, err := recipeToModel(recipe)
	if err != nil {
		return errors.NewDatabaseError("encode recipe", err)
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "target_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "description", "servings", "prep_time", "cook_time",
			"ingredients", "instructions", "nutrients", "systems", "model",
			"updated_at",
		}),
	}).Create(model)
	if result.Error != nil {
		return errors.NewDatabaseError("save recipe", result.Error)
	}
	return nil
}

// FindByTarget returns the stored recipe for a meal target, or nil when none
// exists
func (r *RecipeRepository) FindByTarget(ctx context.Context, targetID uuid.UUID) (*generation.Recipe, error) {
	var model GeneratedRecipeModel

	result := r.db.WithContext(ctx).First(&model, "target_id = ?", targetID)
	if result.Error != nil {
		if stderrors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.NewDatabaseError("find recipe by target", result.Error)
	}

	return modelToRecipe(&model)
}

// FindByOwner returns the caller's most recent recipes
func (r *RecipeRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]*generation.Recipe, error) {
	if limit <= 0 {
		limit = 20
	}

	var models []GeneratedRecipeModel
	result := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&models)
	if result.Error != nil {
		return nil, errors.NewDatabaseError("find recipes by owner", result.Error)
	}

	recipes := make([]*generation.Recipe, 0, len(models))
	for i := range models {
		recipe, err := modelToRecipe(&models[i])
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, recipe)
	}
	return recipes, nil
}

func recipeToModel(recipe *generation.Recipe) (*GeneratedRecipeModel, error) {
	ingredients, err := json.Marshal(recipe.Ingredients)
	if err != nil {
		return nil, err
	}

	systems := make(StringSlice, len(recipe.Systems))
	for i, s := range recipe.Systems {
		systems[i] = string(s)
	}

	return &GeneratedRecipeModel{
		ID:           recipe.ID,
		TargetID:     recipe.TargetID,
		OwnerID:      recipe.OwnerID,
		Title:        recipe.Title,
		Description:  recipe.Description,
		Servings:     recipe.Servings,
		PrepTime:     recipe.PrepTime,
		CookTime:     recipe.CookTime,
		Ingredients:  JSONField(ingredients),
		Instructions: recipe.Instructions,
		Nutrients:    StringMap(recipe.Nutrients),
		Systems:      systems,
		Model:        recipe.Model,
		CreatedAt:    recipe.CreatedAt,
	}, nil
}

func modelToRecipe(model *GeneratedRecipeModel) (*generation.Recipe, error) {
	var ingredients []generation.Ingredient
	if len(model.Ingredients) > 0 {
		if err := json.Unmarshal(model.Ingredients, &ingredients); err != nil {
			return nil, errors.NewDatabaseError("decode recipe ingredients", err)
		}
	}

	systems := make([]generation.DefenseSystem, len(model.Systems))
	for i, s := range model.Systems {
		systems[i] = generation.DefenseSystem(s)
	}

	return &generation.Recipe{
		ID:           model.ID,
		TargetID:     model.TargetID,
		OwnerID:      model.OwnerID,
		Title:        model.Title,
		Description:  model.Description,
		Servings:     model.Servings,
		PrepTime:     model.PrepTime,
		CookTime:     model.CookTime,
		Ingredients:  ingredients,
		Instructions: model.Instructions,
		Nutrients:    map[string]string(model.Nutrients),
		Systems:      systems,
		Model:        model.Model,
		CreatedAt:    model.CreatedAt,
	}, nil
}
