package handlers

import (
	"fmt"

	"github.com/spf13/cobra"

	"modbot/internal/config"
	"modbot/internal/core"
	"modbot/internal/reddit"
)

// NewSyncCmd creates the sync command for pulling moderated subreddits
func NewSyncCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync moderated subreddits into communities",
		Long: `Fetch the subreddits the user's connected Reddit account moderates
and upsert each one as a community row. The user must have completed the
OAuth exchange first so a Reddit token is stored on their profile.

Examples:
  modbot sync --user alice`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" {
				return fmt.Errorf("--user is required")
			}
			return runSync(cmd, userID)
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user ID whose communities to sync (required)")

	return cmd
}

func runSync(cmd *cobra.Command, userID string) error {
	ctx := cmd.Context()

	db, err := getDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	service, err := reddit.NewService(config.GetReddit())
	if err != nil {
		return fmt.Errorf("reddit integration is not configured: %w", err)
	}

	profile, err := db.Profiles().GetByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}
	if profile == nil || profile.RedditToken == "" {
		return fmt.Errorf("user %s has no connected Reddit account; complete the OAuth exchange first", userID)
	}

	subreddits, err := service.ModeratedSubreddits(ctx, profile.RedditToken)
	if err != nil {
		return fmt.Errorf("failed to list moderated subreddits: %w", err)
	}

	for _, sub := range subreddits {
		community := &core.Community{
			UserID:        userID,
			SubredditID:   sub.ID,
			SubredditName: sub.DisplayName,
			DisplayName:   sub.DisplayNamePrefix,
			Description:   sub.PublicDescription,
			Subscribers:   sub.Subscribers,
			IsModerator:   true,
		}
		if err := db.Communities().Upsert(ctx, community); err != nil {
			return fmt.Errorf("failed to store community %s: %w", sub.DisplayName, err)
		}
		fmt.Printf("  synced r/%s (%d subscribers)\n", sub.DisplayName, sub.Subscribers)
	}

	fmt.Printf("Synced %d moderated subreddits for user %s\n", len(subreddits), userID)
	return nil
}
