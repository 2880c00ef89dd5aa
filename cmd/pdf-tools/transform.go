package main

import (
	"github.com/spf13/cobra"

	"github.com/Epistemic-Technology/pdf-tools/internal/documents"
	"github.com/Epistemic-Technology/pdf-tools/internal/operations"
	"github.com/Epistemic-Technology/pdf-tools/models"
)

// transformFunc runs one operation against the engine
type transformFunc func(cmd *cobra.Command, engine *operations.Engine, inputs []models.SourceInfo) (*models.TransformResult, error)

// runTransform parses args as inputs, runs fn and prints the staged outputs
func runTransform(fn transformFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		inputs := make([]models.SourceInfo, len(args))
		for i, arg := range args {
			inputs[i] = documents.SourceFromString(arg)
		}

		engine, err := newEngine()
		if err != nil {
			return err
		}
		defer engine.Close()

		result, err := fn(cmd, engine, inputs)
		if err != nil {
			return err
		}
		return printTransform(cmd, engine.Stager().Dir(), result)
	}
}
