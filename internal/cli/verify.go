package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/linkedclaims/claimresolve/internal/pipeline"
)

var (
	pendingLimit int
	rejectReason string
	verifyUser   string
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Review URL candidates found for organizations",
	Long: `Verify manages the human review queue. Resolution never publishes an
uncertain URL on its own: candidates wait here until someone approves or
rejects them. Approving one candidate rejects its siblings, so each
organization ends up with at most one verified URL.`,
}

var verifyPendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List organizations with candidates awaiting review",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newCLIPipeline()
		if err != nil {
			return err
		}

		orgs := p.PendingVerifications(pendingLimit)
		if len(orgs) == 0 {
			fmt.Println("No URL candidates awaiting review.")
			return nil
		}

		for _, org := range orgs {
			fmt.Printf("%s (%d candidates)\n", org.DisplayName, org.CandidateCount)
			for _, c := range org.Candidates {
				fmt.Printf("  [%.2f] %s\n", c.Confidence, c.URL)
				if c.Title != "" {
					fmt.Printf("         %s\n", c.Title)
				}
				fmt.Printf("         id: %s\n", c.CandidateID)
			}
			fmt.Println()
		}
		return nil
	},
}

var verifyApproveCmd = &cobra.Command{
	Use:   "approve <candidate-id>",
	Short: "Approve a candidate as the organization's verified URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newCLIPipeline()
		if err != nil {
			return err
		}
		if !p.Approve(args[0], verifyUser) {
			return fmt.Errorf("candidate %s not found or already finalized", args[0])
		}
		fmt.Println("Approved.")
		return nil
	},
}

var verifyRejectCmd = &cobra.Command{
	Use:   "reject <candidate-id>",
	Short: "Reject a candidate URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newCLIPipeline()
		if err != nil {
			return err
		}
		if !p.Reject(args[0], rejectReason, verifyUser) {
			return fmt.Errorf("candidate %s not found or already finalized", args[0])
		}
		fmt.Println("Rejected.")
		return nil
	},
}

var verifySuggestCmd = &cobra.Command{
	Use:   "suggest <organization> <url>",
	Short: "Suggest a URL for an organization",
	Long: `Suggest queues a URL you already know as a high-confidence candidate.
It still goes through review like any other candidate.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newCLIPipeline()
		if err != nil {
			return err
		}
		added, err := p.SuggestURL(args[0], args[1], verifyUser)
		if err != nil {
			return err
		}
		fmt.Printf("Queued suggestion %s for review (id: %s)\n", args[1], added[0].ID)
		return nil
	},
}

var verifyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show verification and resolution statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newCLIPipeline()
		if err != nil {
			return err
		}

		vs := p.VerificationStats()
		rs := p.ResolutionStats()

		fmt.Println("Verification:")
		fmt.Printf("  candidates: %d total, %d approved, %d rejected, %d pending\n",
			vs.TotalCandidates, vs.Approved, vs.Rejected, vs.Pending)
		fmt.Printf("  organizations: %d verified, %d with pending candidates\n",
			vs.VerifiedOrganizations, vs.PendingOrganizations)
		fmt.Println("Resolution:")
		fmt.Printf("  known organizations: %d\n", rs.KnownOrgs)
		fmt.Printf("  cached searches: %d\n", rs.CachedSearches)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.AddCommand(verifyPendingCmd, verifyApproveCmd, verifyRejectCmd, verifySuggestCmd, verifyStatsCmd)

	verifyPendingCmd.Flags().IntVar(&pendingLimit, "limit", 20, "maximum organizations to list")
	verifyRejectCmd.Flags().StringVar(&rejectReason, "reason", "rejected by reviewer", "why the URL is wrong")
	verifyCmd.PersistentFlags().StringVar(&verifyUser, "user", defaultUser(), "reviewer identity recorded on decisions")
}

func newCLIPipeline() (*pipeline.Pipeline, error) {
	cfg := buildConfig()
	logger, err := newLogger()
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return pipeline.NewPipeline(cfg, logger)
}

func defaultUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "cli"
}
