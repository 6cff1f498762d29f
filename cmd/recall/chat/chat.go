// Package chatcmder provides the chat command for an interactive session
// against a running recall server.
package chatcmder

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mindneox/recall/pkg/chat"
	"github.com/mindneox/recall/pkg/cliui"
	"github.com/mindneox/recall/pkg/config"
	"github.com/mindneox/recall/pkg/dotdir"
	"github.com/mindneox/recall/pkg/logger"
	"github.com/mindneox/recall/pkg/memory"
)

var (
	userPrompt      = cliui.UserStyle.Render("you> ")
	assistantPrompt = cliui.AgentStyle.Render("recall> ")
)

type chatCommander struct {
	apiTarget  string
	userID     string
	newSession bool
	configDir  string
	debug      bool

	in     io.Reader
	out    io.Writer
	client *http.Client
	logger *slog.Logger
}

const chatLongDesc string = `Start an interactive chat session with a running recall server.

Each message is sent to the server's chat endpoint, which answers with the
help of your recent history and remembers the exchange. The session and user
ids the server assigns are saved in the .recall/ directory, so re-running
"recall chat" continues the same conversation. Pass --new to start over.

Examples:
  recall chat
  recall chat --user alice
  recall chat --api-target http://recall.internal:8000 --new`

const chatShortDesc string = "Interactive chat against a running recall server"

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			cfg, err := config.Load(cmd, cmder.configDir, config.FlagAPITarget)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			cmder.apiTarget = strings.TrimRight(cfg.Client.APITarget, "/")
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmder.debug, _ = cmd.Flags().GetBool("debug")
			cmder.in = cmd.InOrStdin()
			cmder.out = cmd.OutOrStdout()
			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagAPITarget, &cmder.apiTarget)
	cmd.Flags().StringVarP(&cmder.userID, "user", "u", "", "User id to chat as (default: anonymous, scoped to the session)")
	cmd.Flags().BoolVar(&cmder.newSession, "new", false, "Forget the saved session and start a new one")

	return cmd
}

func (c *chatCommander) run(ctx context.Context) error {
	c.logger = logger.Nop()
	if c.debug {
		c.logger = logger.New(logger.WithDebug(true), logger.WithPretty(true))
	}
	c.client = &http.Client{
		// generation can be slow
		Timeout: 5 * time.Minute,
	}

	ddm := dotdir.NewManager()
	if c.newSession {
		if err := ddm.ClearSession(c.configDir); err != nil {
			return fmt.Errorf("clearing session: %w", err)
		}
	}

	state, err := ddm.LoadSession(c.configDir)
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}
	if state == nil {
		state = &dotdir.SessionState{}
	}
	if c.userID != "" && c.userID != state.UserID {
		// A different user never continues someone else's session.
		state = &dotdir.SessionState{UserID: c.userID}
	}

	fmt.Fprintln(c.out)
	if state.SessionID != "" {
		fmt.Fprintf(c.out, "  %s Resuming session %s\n", cliui.SuccessMark, cliui.KeyStyle.Render(state.SessionID))
	} else {
		fmt.Fprintf(c.out, "  %s New session\n", cliui.DimStyle.Render("●"))
	}
	if state.UserID != "" {
		if greeting, err := c.greeting(ctx, state.UserID); err == nil {
			fmt.Fprintf(c.out, "\n%s%s\n", assistantPrompt, greeting)
		} else {
			c.logger.Debug("greeting unavailable", "error", err)
		}
	}
	fmt.Fprintf(c.out, "\n  %s\n\n", cliui.DimStyle.Render("Type your message and press Enter. /exit or Ctrl+D to quit."))

	scanner := bufio.NewScanner(c.in)
	for {
		fmt.Fprint(c.out, userPrompt)
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "/exit" {
			break
		}

		var resp *chat.Response
		err := cliui.Step(c.out, "thinking", func() error {
			var err error
			resp, err = c.send(ctx, chat.Request{
				Message:   input,
				SessionID: state.SessionID,
				UserID:    state.UserID,
			})
			return err
		})
		if err != nil {
			fmt.Fprintf(c.out, "  %s %v\n\n", cliui.FailMark, err)
			continue
		}

		fmt.Fprintf(c.out, "%s%s\n", assistantPrompt, resp.Response)
		if resp.MemoryStatus != "" && resp.MemoryStatus != memory.StatusOK {
			fmt.Fprintf(c.out, "  %s %s\n",
				cliui.StatusMark(string(resp.MemoryStatus)),
				cliui.DimStyle.Render("this turn may not be remembered"),
			)
		}
		fmt.Fprintln(c.out)

		if resp.SessionID != state.SessionID || resp.UserID != state.UserID {
			state = &dotdir.SessionState{SessionID: resp.SessionID, UserID: resp.UserID}
			if err := ddm.SaveSession(state, c.configDir); err != nil {
				c.logger.Warn("could not save session", "error", err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Fprintln(c.out)
	return nil
}

// send posts one message to the chat endpoint.
func (c *chatCommander) send(ctx context.Context, req chat.Request) (*chat.Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	c.logger.Debug("sending chat request",
		"api_target", c.apiTarget,
		"session_id", req.SessionID,
	)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiTarget+"/v1/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending request to recall: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("recall returned status %d: %s", resp.StatusCode, apiErr.Error)
		}
		return nil, fmt.Errorf("recall returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	out := &chat.Response{}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return out, nil
}

// greeting fetches the predicted greeting for a returning user.
func (c *chatCommander) greeting(ctx context.Context, userID string) (string, error) {
	target := c.apiTarget + "/v1/users/" + url.PathEscape(userID) + "/predict"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var body struct {
		Greeting string `json:"greeting"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	if body.Greeting == "" {
		return "", fmt.Errorf("empty greeting (status %d)", resp.StatusCode)
	}
	return body.Greeting, nil
}
