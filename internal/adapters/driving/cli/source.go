package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jkkn-ai/assist/internal/core/domain"
)

var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Manage document sources",
	Long:  `Add, list, and remove document sources.`,
}

var sourceAddCmd = &cobra.Command{
	Use:   "add [connector-type]",
	Short: "Add a new document source",
	Long: `Adds a document source of the given connector type.

Prompts for the connector's configuration fields. Run without an
argument to see the available connector types.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSourceAdd,
}

var sourceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured sources",
	RunE:  runSourceList,
}

var sourceRemoveCmd = &cobra.Command{
	Use:   "remove [source-id]",
	Short: "Remove a source and its indexed data",
	Args:  cobra.ExactArgs(1),
	RunE:  runSourceRemove,
}

func init() {
	sourceCmd.AddCommand(sourceAddCmd)
	sourceCmd.AddCommand(sourceListCmd)
	sourceCmd.AddCommand(sourceRemoveCmd)
	rootCmd.AddCommand(sourceCmd)
}

func runSourceAdd(cmd *cobra.Command, args []string) error {
	if sourceService == nil || connectorRegistry == nil {
		return errors.New("source service not configured")
	}

	if len(args) == 0 {
		cmd.Println("Available connector types:")
		for _, ct := range domain.KnownConnectorTypes() {
			cmd.Printf("  %-12s %s\n", ct.ID, ct.Description)
		}
		cmd.Println("\nUsage: assist source add [connector-type]")
		return nil
	}

	connectorType := args[0]
	typeInfo := domain.ConnectorTypeByID(connectorType)
	if typeInfo == nil {
		return fmt.Errorf("unknown connector type: %s", connectorType)
	}

	reader := bufio.NewReader(os.Stdin)

	cmd.Printf("Adding a %s source.\n\n", typeInfo.Name)
	cmd.Print("Source name: ")
	name := readLine(reader)
	if name == "" {
		return errors.New("source name is required")
	}

	config := make(map[string]string)
	for _, key := range typeInfo.ConfigKeys {
		cmd.Printf("%s (%s): ", key.Label, key.Description)
		value := readLine(reader)
		if value == "" && key.Required {
			return fmt.Errorf("%s is required", key.Label)
		}
		if value != "" {
			config[key.Key] = value
		}
	}

	ctx := context.Background()
	if err := sourceService.ValidateConfig(ctx, connectorType, config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	source := domain.Source{
		ID:        uuid.New().String(),
		Type:      connectorType,
		Name:      name,
		Config:    config,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	// Probe the source before saving so a typo surfaces now, not at
	// the first sync.
	connector, err := connectorRegistry.Create(ctx, source)
	if err != nil {
		return fmt.Errorf("failed to create connector: %w", err)
	}
	if err := connector.Validate(ctx); err != nil {
		connector.Close()
		return fmt.Errorf("source validation failed: %w", err)
	}
	connector.Close()

	if err := sourceService.Add(ctx, source); err != nil {
		return fmt.Errorf("failed to add source: %w", err)
	}

	cmd.Printf("\nSource added: %s (%s)\n", name, source.ID)
	cmd.Printf("Run 'assist sync %s' to index it.\n", source.ID)
	return nil
}

func runSourceList(cmd *cobra.Command, _ []string) error {
	if sourceService == nil {
		return errors.New("source service not configured")
	}

	sources, err := sourceService.List(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list sources: %w", err)
	}

	if len(sources) == 0 {
		cmd.Println("No sources configured.")
		cmd.Println("Run 'assist source add' to add one.")
		return nil
	}

	cmd.Println("Configured sources:")
	cmd.Println()
	for i := range sources {
		cmd.Printf("  %s\n", sources[i].ID)
		cmd.Printf("    Name: %s\n", sources[i].Name)
		cmd.Printf("    Type: %s\n", sources[i].Type)
		cmd.Println()
	}

	cmd.Printf("Total: %d sources\n", len(sources))
	return nil
}

func runSourceRemove(cmd *cobra.Command, args []string) error {
	if sourceService == nil {
		return errors.New("source service not configured")
	}

	sourceID := args[0]
	if err := sourceService.Remove(context.Background(), sourceID); err != nil {
		return fmt.Errorf("failed to remove source: %w", err)
	}

	cmd.Printf("Source %s removed.\n", sourceID)
	return nil
}
