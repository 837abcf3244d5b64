package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/mirkobrombin/cadlock/pkg/cadlock"
	"github.com/mirkobrombin/cadlock/pkg/logger"
	"github.com/mirkobrombin/cadlock/pkg/tools"
	"github.com/mirkobrombin/cadlock/pkg/types"
	"github.com/spf13/cobra"
	"github.com/xeipuuv/gojsonschema"
)

// NewValidateCommand creates the `validate` command for verifying a build
// profile against the JSON Schema.
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [profile]",
		Short: "Validate a build profile against profile.schema.json",
		Args:  cobra.ExactArgs(1),
		RunE:  runValidate,
	}
	return cmd
}

// runValidate checks the provided profile against the JSON Schema, then
// against the field syntax rules, and reports any validation errors.
func runValidate(cmd *cobra.Command, args []string) error {
	profilePath := tools.ResolvePath(args[0])

	reflector := &jsonschema.Reflector{ExpandedStruct: true}
	schema := reflector.Reflect(&types.BuildProfile{})

	schemaBytes, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("failed to serialize schema: %w", err)
	}
	schemaLoader := gojsonschema.NewBytesLoader(schemaBytes)
	documentLoader := gojsonschema.NewReferenceLoader("file://" + profilePath)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		logger.Println("Profile validation errors:")
		for _, desc := range result.Errors() {
			logger.Printf(" - %s", desc)
		}
		return fmt.Errorf("validation failed with %d errors", len(result.Errors()))
	}

	if _, err = cadlock.LoadBuildProfile(profilePath); err != nil {
		return err
	}

	logger.Println("Profile is valid against the schema.")
	return nil
}
