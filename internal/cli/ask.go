package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"recipe-chat/internal/chat"
	"recipe-chat/internal/render"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type askOptions struct {
	InputFile string
	Model     string
	JSON      bool
}

func newAskCmd() *cobra.Command {
	opts := &askOptions{}
	cmd := &cobra.Command{
		Use:   "ask [ingredients...]",
		Short: "Run one exchange and print the reply",
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(args, opts.InputFile, cmd.InOrStdin())
			if err != nil {
				return err
			}
			rt, err := newRuntime(cmd.ErrOrStderr(), opts.Model)
			if err != nil {
				return err
			}
			defer rt.Close()

			session := chat.NewSession(rt.profile, rt.generator,
				chat.WithID(uuid.NewString()),
				chat.WithLogger(rt.logger),
			)
			return runAsk(cmd.Context(), cmd.OutOrStdout(), session, input, opts.JSON)
		},
	}
	cmd.Flags().StringVarP(&opts.InputFile, "file", "F", "", "input file, use -F- for stdin")
	cmd.Flags().StringVar(&opts.Model, "model", "", "override model name")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "print the session state as JSON")
	return cmd
}

// runAsk submits input, waits for the reply and prints it. A blank input is
// an error here rather than a silent no-op.
func runAsk(ctx context.Context, out io.Writer, session *chat.Session, input string, asJSON bool) error {
	done, ok := session.Send(ctx, input)
	if !ok {
		return errors.New("input is required")
	}
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	state := session.Snapshot()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(state)
	}
	if len(state.Messages) == 0 {
		return errors.New("no reply")
	}
	reply := state.Messages[len(state.Messages)-1]
	_, err := fmt.Fprintln(out, plainText(reply.Text))
	return err
}

// plainText renders message text for a plain terminal or a pipe.
func plainText(text string) string {
	segments := render.Parse(text)
	lines := make([]string, 0, len(segments))
	for _, seg := range segments {
		switch seg.Kind {
		case render.KindRule:
			lines = append(lines, strings.Repeat("-", 24))
		case render.KindBreak:
			lines = append(lines, "")
		case render.KindStrong:
			lines = append(lines, strings.ToUpper(seg.Text))
		default:
			lines = append(lines, seg.Text)
		}
	}
	return strings.Join(lines, "\n")
}
