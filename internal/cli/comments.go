package cli

import (
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/applytrack/applytrack/internal/domain/position/domain"
)

var commentsCmd = &cobra.Command{
	Use:     "comments",
	Aliases: []string{"comment"},
	Short:   "Manage notes attached to a position",
}

var commentsListCmd = &cobra.Command{
	Use:     "list <positionId>",
	Aliases: []string{"ls"},
	Short:   "List the comments of a position",
	Args:    cobra.ExactArgs(1),
	RunE:    runCommentsList,
}

var commentsAddCmd = &cobra.Command{
	Use:   "add <positionId> <body...>",
	Short: "Add a comment",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runCommentsAdd,
}

var commentsEditCmd = &cobra.Command{
	Use:   "edit <positionId> <commentId> <body...>",
	Short: "Replace the body of a comment",
	Args:  cobra.MinimumNArgs(3),
	RunE:  runCommentsEdit,
}

var commentsDeleteCmd = &cobra.Command{
	Use:     "delete <positionId> <commentId>",
	Aliases: []string{"rm"},
	Short:   "Delete a comment",
	Args:    cobra.ExactArgs(2),
	RunE:    runCommentsDelete,
}

func init() {
	commentsCmd.AddCommand(commentsListCmd)
	commentsCmd.AddCommand(commentsAddCmd)
	commentsCmd.AddCommand(commentsEditCmd)
	commentsCmd.AddCommand(commentsDeleteCmd)
	rootCmd.AddCommand(commentsCmd)
}

func runCommentsList(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}

	comments, err := a.Comments().GetComments(cmd.Context(), args[0], tokenFlag)
	if err != nil {
		return err
	}

	out := CommentListOutput{PositionID: args[0], Comments: make([]CommentOutput, 0, len(comments))}
	for _, c := range comments {
		out.Comments = append(out.Comments, newCommentOutput(c))
	}
	return render(cmd, out, func(w io.Writer) {
		printComments(w, out.Comments)
	})
}

func runCommentsAdd(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}

	input := domain.CreateCommentInput{Body: strings.Join(args[1:], " ")}
	c, err := a.Comments().CreateComment(cmd.Context(), args[0], input, tokenFlag)
	if err != nil {
		return err
	}

	out := newCommentOutput(c)
	return render(cmd, out, func(w io.Writer) {
		printSuccess(w, "Added comment "+c.ID())
	})
}

func runCommentsEdit(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}

	input := domain.UpdateCommentInput{Body: strings.Join(args[2:], " ")}
	c, err := a.Comments().UpdateComment(cmd.Context(), args[0], args[1], input, tokenFlag)
	if err != nil {
		return err
	}

	out := newCommentOutput(c)
	return render(cmd, out, func(w io.Writer) {
		printSuccess(w, "Updated comment "+c.ID())
	})
}

func runCommentsDelete(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}

	if err := a.Comments().DeleteComment(cmd.Context(), args[0], args[1], tokenFlag); err != nil {
		return err
	}

	return render(cmd, deletedOutput{ID: args[1], Deleted: true}, func(w io.Writer) {
		printSuccess(w, "Deleted comment "+args[1])
	})
}
