package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/applytrack/applytrack/internal/domain/position/app"
	"github.com/applytrack/applytrack/internal/domain/position/domain"
)

var titleCaser = cases.Title(language.English)

// fieldLabel turns a snake_case key into a display label.
func fieldLabel(key string) string {
	return titleCaser.String(strings.ReplaceAll(key, "_", " "))
}

func currentFormat() string {
	if cfg == nil || cfg.Output.Format == "" {
		return "text"
	}
	return cfg.Output.Format
}

// render writes doc in the configured structured format, or calls text for
// the human-readable form.
func render(cmd *cobra.Command, doc any, text func(io.Writer)) error {
	w := cmd.OutOrStdout()
	switch currentFormat() {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(doc)
	case "yaml":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(doc); err != nil {
			return err
		}
		return encoder.Close()
	case "toml":
		return toml.NewEncoder(w).Encode(doc)
	default:
		text(w)
		return nil
	}
}

// PositionOutput is a position as printed by the CLI.
type PositionOutput struct {
	ID             string     `json:"id" yaml:"id" toml:"id"`
	UserID         string     `json:"user_id" yaml:"user_id" toml:"user_id"`
	Company        string     `json:"company" yaml:"company" toml:"company"`
	RoleTitle      string     `json:"role_title" yaml:"role_title" toml:"role_title"`
	Description    string     `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	AppliedOn      string     `json:"applied_on" yaml:"applied_on" toml:"applied_on"`
	URL            string     `json:"url,omitempty" yaml:"url,omitempty" toml:"url,omitempty"`
	InitialComment string     `json:"initial_comment,omitempty" yaml:"initial_comment,omitempty" toml:"initial_comment,omitempty"`
	Status         string     `json:"status" yaml:"status" toml:"status"`
	StatusLabel    string     `json:"status_label" yaml:"status_label" toml:"status_label"`
	Editable       bool       `json:"editable" yaml:"editable" toml:"editable"`
	CreatedAt      time.Time  `json:"created_at" yaml:"created_at" toml:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" yaml:"updated_at" toml:"updated_at"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty" yaml:"deleted_at,omitempty" toml:"deleted_at,omitempty"`
}

func newPositionOutput(p *domain.Position) PositionOutput {
	return PositionOutput{
		ID:             p.ID(),
		UserID:         p.UserID(),
		Company:        p.Company(),
		RoleTitle:      p.RoleTitle(),
		Description:    p.Description(),
		AppliedOn:      p.AppliedOn().Value(),
		URL:            p.URL().Value(),
		InitialComment: p.InitialComment(),
		Status:         p.Status().String(),
		StatusLabel:    p.Status().Label(),
		Editable:       p.CanBeEdited(),
		CreatedAt:      p.CreatedAt(),
		UpdatedAt:      p.UpdatedAt(),
		DeletedAt:      p.DeletedAt(),
	}
}

// CommentOutput is a comment as printed by the CLI.
type CommentOutput struct {
	ID         string    `json:"id" yaml:"id" toml:"id"`
	PositionID string    `json:"position_id" yaml:"position_id" toml:"position_id"`
	UserID     string    `json:"user_id" yaml:"user_id" toml:"user_id"`
	Body       string    `json:"body" yaml:"body" toml:"body"`
	CreatedAt  time.Time `json:"created_at" yaml:"created_at" toml:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" yaml:"updated_at" toml:"updated_at"`
}

func newCommentOutput(c *domain.Comment) CommentOutput {
	return CommentOutput{
		ID:         c.ID(),
		PositionID: c.PositionID(),
		UserID:     c.UserID(),
		Body:       c.Body(),
		CreatedAt:  c.CreatedAt(),
		UpdatedAt:  c.UpdatedAt(),
	}
}

// PositionListOutput wraps a list so every format has a top-level table.
type PositionListOutput struct {
	Positions []PositionOutput `json:"positions" yaml:"positions" toml:"positions"`
}

// CommentListOutput wraps a list of comments.
type CommentListOutput struct {
	PositionID string          `json:"position_id" yaml:"position_id" toml:"position_id"`
	Comments   []CommentOutput `json:"comments" yaml:"comments" toml:"comments"`
}

// PositionDetailOutput is a position with its comments and next statuses.
type PositionDetailOutput struct {
	Position       PositionOutput  `json:"position" yaml:"position" toml:"position"`
	AllowedTargets []string        `json:"allowed_targets" yaml:"allowed_targets" toml:"allowed_targets"`
	Comments       []CommentOutput `json:"comments" yaml:"comments" toml:"comments"`
}

func newPositionDetailOutput(d *app.GetPositionDetailOutput) PositionDetailOutput {
	out := PositionDetailOutput{
		Position:       newPositionOutput(d.Position),
		AllowedTargets: statusNames(d.AllowedTargets),
		Comments:       make([]CommentOutput, 0, len(d.Comments)),
	}
	for _, c := range d.Comments {
		out.Comments = append(out.Comments, newCommentOutput(c))
	}
	return out
}

func statusNames(statuses []domain.Status) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, s.String())
	}
	return out
}

func statusStyle(s domain.Status) func(...string) string {
	switch s {
	case domain.StatusOfferReceived:
		return styles.Success.Render
	case domain.StatusRejected:
		return styles.Error.Render
	case domain.StatusWithdrawn:
		return styles.Subtle.Render
	default:
		return styles.Info.Render
	}
}

func printPositionTable(w io.Writer, positions []PositionOutput) {
	if len(positions) == 0 {
		printSubtle(w, "No positions yet.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join([]string{
		fieldLabel("id"), fieldLabel("company"), fieldLabel("role_title"), fieldLabel("status"), fieldLabel("applied_on"),
	}, "\t"))
	for _, p := range positions {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.Company, p.RoleTitle, p.StatusLabel, appliedDisplay(p.AppliedOn))
	}
	_ = tw.Flush()
}

func appliedDisplay(value string) string {
	d, err := domain.NewAppliedDate(value)
	if err != nil {
		return value
	}
	return d.Display()
}

func printPosition(w io.Writer, p PositionOutput) {
	printTitle(w, fmt.Sprintf("%s at %s", p.RoleTitle, p.Company))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	row := func(key, value string) {
		if value != "" {
			fmt.Fprintf(tw, "  %s:\t%s\n", fieldLabel(key), value)
		}
	}
	row("id", p.ID)
	row("status", statusStyle(domain.Status(p.Status))(p.StatusLabel))
	row("applied_on", appliedDisplay(p.AppliedOn))
	row("url", p.URL)
	row("description", p.Description)
	row("initial_comment", p.InitialComment)
	row("updated_at", p.UpdatedAt.Format(time.RFC3339))
	_ = tw.Flush()

	if !p.Editable {
		printWarning(w, "This position can no longer be edited.")
	}
}

func printComments(w io.Writer, comments []CommentOutput) {
	if len(comments) == 0 {
		printSubtle(w, "No comments.")
		return
	}
	for _, c := range comments {
		fmt.Fprintf(w, "%s %s\n", styles.Bold.Render(c.CreatedAt.Format("Jan 2, 2006 15:04")), styles.Subtle.Render("("+c.ID+")"))
		fmt.Fprintf(w, "  %s\n", c.Body)
	}
}
