package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/validation"
)

var loadIngredientsCmd = &cobra.Command{
	Use:   "load-ingredients <file.json>",
	Short: "Import ingredients from a JSON file",
	Long: `Import ingredients from a JSON list of {"name", "measurement_unit"} objects.

Invalid rows are reported and skipped; existing name/unit pairs are kept.`,
	Args: cobra.ExactArgs(1),
	RunE: runLoadIngredients,
}

var loadTagsCmd = &cobra.Command{
	Use:   "load-tags <file.yaml>",
	Short: "Import tags from a YAML file",
	Long: `Import tags from a YAML list of {name, color, slug} entries.

Tags whose slug already exists are left unchanged.`,
	Args: cobra.ExactArgs(1),
	RunE: runLoadTags,
}

// tagFixture is one entry of a tag YAML file.
type tagFixture struct {
	Name  string `yaml:"name"`
	Color string `yaml:"color"`
	Slug  string `yaml:"slug"`
}

func readIngredients(r io.Reader) ([]models.Ingredient, error) {
	var rows []models.Ingredient
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, fmt.Errorf("failed to decode ingredients: %w", err)
	}
	return rows, nil
}

func readTags(r io.Reader) ([]models.Tag, error) {
	var fixtures []tagFixture
	if err := yaml.NewDecoder(r).Decode(&fixtures); err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}
	tags := make([]models.Tag, 0, len(fixtures))
	for _, f := range fixtures {
		tag := models.Tag{Name: f.Name, Slug: f.Slug}
		if f.Color != "" {
			color := f.Color
			tag.Color = &color
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

func newCatalogService(e *env) *service.CatalogService {
	return service.NewCatalogService(repository.NewCatalogRepo(e.db, e.log), nil, validation.New(), e.log)
}

func runLoadIngredients(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := readIngredients(f)
	if err != nil {
		return err
	}

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.log.Sync()

	result, err := newCatalogService(e).ImportIngredients(cmd.Context(), rows)
	if err != nil {
		return err
	}
	report(cmd.OutOrStdout(), "ingredients", result)
	return nil
}

func runLoadTags(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	tags, err := readTags(f)
	if err != nil {
		return err
	}

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.log.Sync()

	result, err := newCatalogService(e).ImportTags(cmd.Context(), tags)
	if err != nil {
		return err
	}
	report(cmd.OutOrStdout(), "tags", result)
	return nil
}

func report(w io.Writer, what string, result *service.ImportResult) {
	fmt.Fprintf(w, "Imported %d %s\n", result.Created, what)
	for _, msg := range result.Rejected {
		fmt.Fprintf(w, "  skipped %s\n", msg)
	}
}
