package nodes

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/mrdaeback/voice-order/internal/agent/graph/conversations"
	"github.com/mrdaeback/voice-order/internal/agent/graph/parsers"
	"github.com/mrdaeback/voice-order/internal/agent/graph/prompts"
	"github.com/mrdaeback/voice-order/internal/agent/model"
	"github.com/mrdaeback/voice-order/internal/cart"
	errx "github.com/mrdaeback/voice-order/internal/core/error"
	logx "github.com/mrdaeback/voice-order/pkg/logger"
)

const (
	NodeTranscriber    = "Transcriber"
	NodeInputConverter = "InputConverter"
	NodeOrderChatModel = "OrderChatModel"
	NodeInterpreter    = "Interpreter"
	NodeDialogue       = "Dialogue"
)

const emptyUtteranceMessage = "말씀을 인식하지 못했어요. 다시 말씀해주세요."

// CatalogView is the read side of the catalog needed to render the prompt.
type CatalogView interface {
	Warm(ctx context.Context) error
	Snapshot() (model.CatalogSnapshot, error)
}

// Dialogue advances the order conversation for one interpreted turn.
type Dialogue interface {
	Process(ctx context.Context, in model.TurnInput, it model.Interpretation) model.TurnResult
}

// NewTranscriberNode fills the utterance from recorded audio when no text was sent.
func NewTranscriberNode(t Transcriber) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, in model.TurnInput) (model.TurnInput, error) {
		in.Message = strings.TrimSpace(in.Message)
		if in.Message == "" && in.AudioBase64 != "" {
			audio, err := decodeAudio(in.AudioBase64)
			if err != nil {
				return in, errx.BadRequest(err, "음성 데이터를 읽을 수 없어요.")
			}
			text, err := t.Transcribe(ctx, audio, in.AudioFormat)
			if err != nil {
				return in, errx.WrapUpstream(err)
			}
			logx.Debug().
				Str("user_id", in.UserID).
				Str("node", NodeTranscriber).
				Int("audio_bytes", len(audio)).
				Str("transcript", text).
				Msg("Audio transcribed")
			in.Message = text
		}
		if in.Message == "" {
			return in, errx.New(errx.ErrEmptyUtterance, http.StatusUnprocessableEntity, emptyUtteranceMessage)
		}
		return in, nil
	})
}

// NewInputConverterPreHandler stores the turn in state and resets per-turn accounting.
func NewInputConverterPreHandler() func(context.Context, model.TurnInput, *model.AppState) (model.TurnInput, error) {
	return func(ctx context.Context, in model.TurnInput, s *model.AppState) (model.TurnInput, error) {
		s.Turn = in
		s.Interpretation = nil
		s.TotalCostUSD = 0
		return in, nil
	}
}

// NewInputConverterNode renders the system prompt from the catalog and the
// caller-held cart, then appends the trimmed history and the utterance.
func NewInputConverterNode(
	mm *conversations.MessagesManager,
	catalog CatalogView,
	promptCfg *model.OrderPromptConfig,
) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, in model.TurnInput) ([]*schema.Message, error) {
		if err := catalog.Warm(ctx); err != nil {
			return nil, fmt.Errorf("warm catalog: %w", err)
		}
		snap, err := catalog.Snapshot()
		if err != nil {
			return nil, fmt.Errorf("catalog snapshot: %w", err)
		}

		systemPrompt, err := prompts.RenderOrderSystem(ctx, prompts.OrderPromptInput{
			Config:          *promptCfg,
			Catalog:         snap,
			Lines:           in.Lines,
			Total:           cart.GrandTotal(in.Lines, in.Ancillary),
			Addresses:       in.Addresses,
			SelectedAddress: in.SelectedAddress,
			SpecialRequest:  in.SpecialRequest,
		})
		if err != nil {
			return nil, fmt.Errorf("render order system prompt: %w", err)
		}

		return mm.BuildOrderContext(systemPrompt, in.History, in.Message), nil
	})
}

// NewOrderChatModelPostHandler computes and logs usage cost for the order model.
func NewOrderChatModelPostHandler(modelName string) func(context.Context, *schema.Message, *model.AppState) (*schema.Message, error) {
	return func(ctx context.Context, out *schema.Message, state *model.AppState) (*schema.Message, error) {
		state.ModelName = modelName
		if out != nil && out.ResponseMeta != nil && out.ResponseMeta.Usage != nil {
			pricing := model.ResolvePricing(modelName)
			inC, outC, totalC := model.ComputeCost(out.ResponseMeta.Usage, pricing)
			if out.Extra == nil {
				out.Extra = map[string]any{}
			}
			out.Extra["usage_cost"] = map[string]any{
				"currency":          "USD",
				"model":             modelName,
				"prompt_tokens":     out.ResponseMeta.Usage.PromptTokens,
				"completion_tokens": out.ResponseMeta.Usage.CompletionTokens,
				"total_tokens":      out.ResponseMeta.Usage.TotalTokens,
				"input_cost":        inC,
				"output_cost":       outC,
				"total_cost":        totalC,
			}
			logx.Debug().
				Str("user_id", state.Turn.UserID).
				Str("node", NodeOrderChatModel).
				Str("model", modelName).
				Int("prompt_tokens", out.ResponseMeta.Usage.PromptTokens).
				Int("completion_tokens", out.ResponseMeta.Usage.CompletionTokens).
				Int("total_tokens", out.ResponseMeta.Usage.TotalTokens).
				Float64("input_cost_usd", inC).
				Float64("output_cost_usd", outC).
				Float64("total_cost_usd", totalC).
				Msg("LLM usage")

			state.TotalCostUSD += totalC
		}
		return out, nil
	}
}

// NewInterpreterNode turns the raw model reply into an interpretation. It never fails.
func NewInterpreterNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, resp *schema.Message) (model.Interpretation, error) {
		if resp == nil {
			return parsers.ParseOrderResponse(""), nil
		}
		return parsers.ParseOrderResponse(resp.Content), nil
	})
}

// NewInterpreterPostHandler saves the interpretation to state.
func NewInterpreterPostHandler() func(context.Context, model.Interpretation, *model.AppState) (model.Interpretation, error) {
	return func(ctx context.Context, out model.Interpretation, state *model.AppState) (model.Interpretation, error) {
		state.Interpretation = &out

		ev := logx.Debug()
		if out.Fallback {
			ev = logx.Warn().Interface("parsing_metadata", out.ParsingMetadata)
		}
		ev.Str("user_id", state.Turn.UserID).
			Str("node", NodeInterpreter).
			Str("intent", string(out.Intent)).
			Bool("fallback", out.Fallback).
			Msg("Order reply interpreted")
		return out, nil
	}
}

// NewDialogueNode applies the interpretation to the turn held in state.
func NewDialogueNode(d Dialogue) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, it model.Interpretation) (*model.TurnResult, error) {
		var (
			in   model.TurnInput
			cost float64
		)
		err := compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
			in = state.Turn
			cost = state.TotalCostUSD
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}

		res := d.Process(ctx, in, it)
		logx.Info().
			Str("user_id", in.UserID).
			Str("intent", string(it.Intent)).
			Str("flow_state", string(res.FlowState)).
			Str("ui_action", string(res.UIAction)).
			Int("lines", len(res.Lines)).
			Float64("total_cost_usd", cost).
			Msg("Turn completed")
		return &res, nil
	})
}
