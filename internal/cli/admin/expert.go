package admin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/mentora-ai/mentora/internal/config"
	"github.com/mentora-ai/mentora/internal/database"
	"github.com/mentora-ai/mentora/internal/repository"
	"github.com/mentora-ai/mentora/internal/service"
)

func ExpertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expert",
		Short: "Manage experts",
		Long:  "Create and list expert accounts",
	}

	cmd.AddCommand(ExpertCreateCmd())
	cmd.AddCommand(ExpertListCmd())

	return cmd
}

func ExpertCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new expert",
		Long:  "Create a new expert account with the specified name",
		Args:  cobra.ExactArgs(1),
		RunE:  runExpertCreate,
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func runExpertCreate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	name := args[0]
	outputFormat, _ := cmd.Flags().GetString("output")

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	expertRepo := repository.NewExpertRepository(pool)
	uuidGen := &service.DefaultUUIDGenerator{}
	authSvc := service.NewAuthService(expertRepo, nil, uuidGen)

	expert, err := authSvc.CreateExpert(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to create expert: %w", err)
	}

	if outputFormat == "json" {
		data := map[string]interface{}{
			"id":         expert.ID,
			"name":       expert.Name,
			"created_at": expert.CreatedAt,
		}
		jsonBytes, _ := json.MarshalIndent(data, "", "  ")
		fmt.Println(string(jsonBytes))
	} else {
		fmt.Printf("Expert created: %s (%s)\n", expert.Name, expert.ID)
	}

	return nil
}

func ExpertListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all experts",
		Long:  "List all expert accounts in the system",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFormat, _ := cmd.Flags().GetString("output")
			return runExpertList(outputFormat)
		},
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func runExpertList(outputFormat string) error {
	ctx := context.Background()

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	expertRepo := repository.NewExpertRepository(pool)

	experts, err := expertRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list experts: %w", err)
	}

	if outputFormat == "json" {
		data := make([]map[string]interface{}, len(experts))
		for i, expert := range experts {
			data[i] = map[string]interface{}{
				"id":               expert.ID,
				"name":             expert.Name,
				"industry":         expert.Industry,
				"profile_complete": expert.ProfileComplete(),
				"created_at":       expert.CreatedAt,
			}
		}
		jsonBytes, _ := json.MarshalIndent(data, "", "  ")
		fmt.Println(string(jsonBytes))
	} else {
		if len(experts) == 0 {
			fmt.Println("No experts found")
			return nil
		}
		fmt.Println("Experts:")
		for _, expert := range experts {
			status := "profile incomplete"
			if expert.ProfileComplete() {
				status = "profile complete"
			}
			fmt.Printf("  %s: %s (%s, created: %s)\n", expert.ID, expert.Name, status, expert.CreatedAt.Format("2006-01-02 15:04:05"))
		}
	}

	return nil
}

func getDBPool(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return database.Connect(ctx, cfg.DatabaseURL)
}
