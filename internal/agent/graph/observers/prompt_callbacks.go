package observers

import (
	"context"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/prompt"
	callbackHelper "github.com/cloudwego/eino/utils/callbacks"

	logx "github.com/mrdaeback/voice-order/pkg/logger"
)

// newPromptHandler logs rendered prompt sizes. Full prompts are only logged at trace level.
func newPromptHandler() *callbackHelper.PromptCallbackHandler {
	return &callbackHelper.PromptCallbackHandler{
		OnEnd: func(ctx context.Context, info *einocb.RunInfo, output *prompt.CallbackOutput) context.Context {
			if output == nil || len(output.Result) == 0 || output.Result[0] == nil {
				return ctx
			}
			content := output.Result[0].Content
			logx.Debug().Str("name", info.Name).Int("prompt_len", len(content)).Msg("prompt rendered")
			logx.Trace().Str("name", info.Name).Str("prompt", content).Msg("prompt content")
			return ctx
		},
		OnError: func(ctx context.Context, info *einocb.RunInfo, err error) context.Context {
			logx.Error().Err(err).Str("name", info.Name).Msg("prompt error")
			return ctx
		},
	}
}
