package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrdaeback/voice-order/internal/agent/graph"
	"github.com/mrdaeback/voice-order/internal/agent/model"
	errx "github.com/mrdaeback/voice-order/internal/core/error"
)

const demoUserID = "3e9c5f4b-8d7a-4f44-8d04-000000000001"

func newChatCmd() *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the order engine from the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			addresses, err := a.users.SavedAddresses(cmd.Context(), userID)
			if err != nil {
				return err
			}

			s := &chatSession{runner: a.runner, state: model.TurnInput{UserID: userID, Addresses: addresses}}
			return s.run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&userID, "user", demoUserID, "user id to order as")
	return cmd
}

// chatSession carries the caller-held state between turns the way a client would.
type chatSession struct {
	runner graph.Runner
	state  model.TurnInput
}

func (s *chatSession) run(ctx context.Context, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "주문을 말씀해주세요. 종료하려면 'exit'을 입력하세요.")
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !sc.Scan() {
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())
		switch line {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		res, err := s.turn(ctx, line)
		if err != nil {
			fmt.Fprintf(out, "! %s\n", errx.MessageOf(err))
			continue
		}
		fmt.Fprintf(out, "%s\n  [%s / %s] 합계 %s\n", res.AssistantMessage, res.FlowState, res.UIAction, res.TotalPrice)
		for i, l := range res.Lines {
			fmt.Fprintf(out, "  %d. %s %s x%d = %s\n", i+1, l.DinnerName, l.ServingStyleName, l.Quantity, l.TotalPrice)
		}
		if res.FlowState == model.StateCompleted {
			fmt.Fprintf(out, "  주문번호 %s\n", res.OrderNumber)
		}
	}
}

// turn sends one utterance and adopts the returned state for the next turn.
func (s *chatSession) turn(ctx context.Context, utterance string) (*model.TurnResult, error) {
	in := s.state
	in.Message = utterance
	res, err := s.runner.Invoke(ctx, in)
	if err != nil {
		return nil, err
	}

	s.state.History = slices.Concat(s.state.History, []model.HistoryMessage{
		{Role: "user", Content: res.UserMessage},
		{Role: "assistant", Content: res.AssistantMessage},
	})
	s.state.Lines = res.Lines
	s.state.Ancillary = res.Ancillary
	s.state.SelectedAddress = res.SelectedAddress
	s.state.SpecialRequest = res.SpecialRequest
	if len(res.Addresses) > 0 {
		s.state.Addresses = res.Addresses
	}
	return res, nil
}
