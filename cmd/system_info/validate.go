package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jonathan/system-info/internal/schemas"
	"github.com/spf13/cobra"
)

// defaultSchema is tried when --schema is not given.
const defaultSchema = "schemas/system_info.schema.json"

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a system info JSON file against a JSON Schema",
	Long:  "Validates a previously written system info document. Uses --schema, or schemas/system_info.schema.json when it can be found.",
	Args:  cobra.NoArgs,
	RunE:  runValidate,
}

var validateJSONFile string

func init() {
	validateCmd.Flags().StringVarP(&validateJSONFile, "json", "j", "", "Path to JSON file to validate (required)")

	if err := validateCmd.MarkFlagRequired("json"); err != nil {
		panic(fmt.Sprintf("failed to mark json flag as required: %v", err))
	}

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	schema := cfg.Schema
	if schema == "" {
		schema = schemas.ResolveSchemaPath(defaultSchema)
	}
	if schema == "" {
		return fmt.Errorf("schema not found: pass --schema or run from the repository root")
	}

	if _, err := os.Stat(validateJSONFile); os.IsNotExist(err) {
		return fmt.Errorf("JSON file not found: %s", validateJSONFile)
	}

	out := cmd.OutOrStdout()
	if err := schemas.ValidateJSON(schema, validateJSONFile); err != nil {
		var validationErr *schemas.ValidationError
		if errors.As(err, &validationErr) {
			_, _ = fmt.Fprintln(out, "Validation failed:")
			for i, fieldErr := range validationErr.Errors {
				_, _ = fmt.Fprintf(out, "  %d. %s: %s\n", i+1, fieldErr.Field, fieldErr.Message)
			}
			return fmt.Errorf("%s does not match %s", validateJSONFile, schema)
		}
		return fmt.Errorf("failed to validate: %w", err)
	}

	_, _ = fmt.Fprintf(out, "Validation passed: %s\n", validateJSONFile)
	return nil
}
