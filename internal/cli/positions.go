package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/applytrack/applytrack/internal/domain/position/domain"
)

// position command flags
var (
	positionCompany        string
	positionRole           string
	positionDescription    string
	positionURL            string
	positionAppliedOn      string
	positionInitialComment string
	positionStatus         string
)

var positionsCmd = &cobra.Command{
	Use:     "positions",
	Aliases: []string{"position", "pos"},
	Short:   "Manage the positions you applied to",
}

var positionsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List positions",
	Args:    cobra.NoArgs,
	RunE:    runPositionsList,
}

var positionsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a position with its comments",
	Args:  cobra.ExactArgs(1),
	RunE:  runPositionsShow,
}

var positionsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Record a new application",
	Long: `Record a new application.

Company, role and the application date are required. The status defaults
to CvSent.

Examples:
  applytrack positions create --company "Rust Corp" --role "Senior Rust Developer" --applied-on 2023-10-27
  applytrack positions create --company Acme --role SRE --applied-on 2024-02-01 --url https://acme.dev/jobs/7`,
	Args: cobra.NoArgs,
	RunE: runPositionsCreate,
}

var positionsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Edit a position",
	Long: `Edit a position. Only the flags you pass are changed.

Rejected or deleted positions cannot be edited. Passing --status also
moves the position through the pipeline after the field changes apply.`,
	Args: cobra.ExactArgs(1),
	RunE: runPositionsUpdate,
}

var positionsStatusCmd = &cobra.Command{
	Use:   "status <id> <status>",
	Short: "Move a position to another status",
	Long: `Move a position to another status.

Statuses: CvSent, PhoneScreenScheduled, TechnicalInterview, OfferReceived,
Rejected, Withdrawn. Case, spaces and dashes are ignored, so
"phone-screen-scheduled" works too.`,
	Args: cobra.ExactArgs(2),
	RunE: runPositionsStatus,
}

var positionsDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a position",
	Args:    cobra.ExactArgs(1),
	RunE:    runPositionsDelete,
}

func init() {
	for _, c := range []*cobra.Command{positionsCreateCmd, positionsUpdateCmd} {
		c.Flags().StringVar(&positionCompany, "company", "", "company name")
		c.Flags().StringVar(&positionRole, "role", "", "role title")
		c.Flags().StringVar(&positionDescription, "description", "", "job description")
		c.Flags().StringVar(&positionURL, "url", "", "link to the job posting")
		c.Flags().StringVar(&positionAppliedOn, "applied-on", "", "application date (YYYY-MM-DD or RFC 3339)")
		c.Flags().StringVar(&positionInitialComment, "comment", "", "first note about the application")
		c.Flags().StringVar(&positionStatus, "status", "", "status")
	}

	positionsCmd.AddCommand(positionsListCmd)
	positionsCmd.AddCommand(positionsShowCmd)
	positionsCmd.AddCommand(positionsCreateCmd)
	positionsCmd.AddCommand(positionsUpdateCmd)
	positionsCmd.AddCommand(positionsStatusCmd)
	positionsCmd.AddCommand(positionsDeleteCmd)
	rootCmd.AddCommand(positionsCmd)
}

func runPositionsList(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}

	positions, err := a.Positions().GetPositions(cmd.Context(), tokenFlag)
	if err != nil {
		return err
	}

	out := PositionListOutput{Positions: make([]PositionOutput, 0, len(positions))}
	for _, p := range positions {
		out.Positions = append(out.Positions, newPositionOutput(p))
	}
	return render(cmd, out, func(w io.Writer) {
		printPositionTable(w, out.Positions)
	})
}

func runPositionsShow(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}

	detail, err := a.PositionDetail().Execute(cmd.Context(), args[0], tokenFlag)
	if err != nil {
		return err
	}

	out := newPositionDetailOutput(detail)
	return render(cmd, out, func(w io.Writer) {
		printPosition(w, out.Position)
		if len(out.AllowedTargets) > 0 {
			printSubtle(w, "Next: "+joinStatuses(detail.AllowedTargets))
		}
		fmt.Fprintln(w)
		printTitle(w, "Comments")
		printComments(w, out.Comments)
	})
}

func runPositionsCreate(cmd *cobra.Command, args []string) error {
	input := domain.CreatePositionInput{
		Company:        positionCompany,
		RoleTitle:      positionRole,
		Description:    positionDescription,
		AppliedOn:      positionAppliedOn,
		URL:            positionURL,
		InitialComment: positionInitialComment,
	}
	if positionStatus != "" {
		status, err := domain.ParseStatus(positionStatus)
		if err != nil {
			return err
		}
		input.Status = status
	}
	// Fail before opening the session so validation never needs a token.
	if err := input.Validate(); err != nil {
		return err
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}

	pos, err := a.Positions().CreatePosition(cmd.Context(), input, tokenFlag)
	if err != nil {
		return err
	}

	out := newPositionOutput(pos)
	return render(cmd, out, func(w io.Writer) {
		printSuccess(w, "Created position "+pos.ID())
		printPosition(w, out)
	})
}

// positionChanges builds a changeset from the flags the user actually set.
func positionChanges(cmd *cobra.Command) (domain.PositionChanges, error) {
	var changes domain.PositionChanges
	set := func(name string, value string, dst **string) {
		if cmd.Flags().Changed(name) {
			v := value
			*dst = &v
		}
	}
	set("company", positionCompany, &changes.Company)
	set("role", positionRole, &changes.RoleTitle)
	set("description", positionDescription, &changes.Description)
	set("url", positionURL, &changes.URL)
	set("applied-on", positionAppliedOn, &changes.AppliedOn)
	set("comment", positionInitialComment, &changes.InitialComment)

	if cmd.Flags().Changed("status") {
		status, err := domain.ParseStatus(positionStatus)
		if err != nil {
			return changes, err
		}
		changes.Status = &status
	}
	return changes, nil
}

func runPositionsUpdate(cmd *cobra.Command, args []string) error {
	changes, err := positionChanges(cmd)
	if err != nil {
		return err
	}
	if changes.IsEmpty() {
		printWarning(cmd.ErrOrStderr(), "No changes given; nothing to update.")
		return nil
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}

	pos, err := a.Positions().UpdatePosition(cmd.Context(), args[0], changes, tokenFlag)
	if err != nil {
		return err
	}

	out := newPositionOutput(pos)
	return render(cmd, out, func(w io.Writer) {
		printSuccess(w, "Updated position "+pos.ID())
		printPosition(w, out)
	})
}

func runPositionsStatus(cmd *cobra.Command, args []string) error {
	status, err := domain.ParseStatus(args[1])
	if err != nil {
		return err
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}

	pos, err := a.Positions().ChangeStatus(cmd.Context(), args[0], status, tokenFlag)
	if err != nil {
		return err
	}

	out := newPositionOutput(pos)
	return render(cmd, out, func(w io.Writer) {
		printSuccess(w, "Status is now "+pos.Status().Label())
		if pos.Status().IsTerminal() {
			printSubtle(w, "This is a final status.")
		}
	})
}

func runPositionsDelete(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}

	if err := a.Positions().DeletePosition(cmd.Context(), args[0], tokenFlag); err != nil {
		return err
	}

	return render(cmd, deletedOutput{ID: args[0], Deleted: true}, func(w io.Writer) {
		printSuccess(w, "Deleted position "+args[0])
	})
}

type deletedOutput struct {
	ID      string `json:"id" yaml:"id" toml:"id"`
	Deleted bool   `json:"deleted" yaml:"deleted" toml:"deleted"`
}

func joinStatuses(statuses []domain.Status) string {
	s := ""
	for i, st := range statuses {
		if i > 0 {
			s += ", "
		}
		s += statusStyle(st)(st.Label())
	}
	return s
}
