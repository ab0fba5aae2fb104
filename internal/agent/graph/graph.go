package graph

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
	einomodel "github.com/cloudwego/eino/components/model"

	"github.com/mrdaeback/voice-order/internal/agent/graph/conversations"
	"github.com/mrdaeback/voice-order/internal/agent/graph/nodes"
	"github.com/mrdaeback/voice-order/internal/agent/graph/observers"
	"github.com/mrdaeback/voice-order/internal/agent/model"
	errx "github.com/mrdaeback/voice-order/internal/core/error"
	logx "github.com/mrdaeback/voice-order/pkg/logger"
)

const maxRunSteps = 20

// Runner executes one order turn end to end.
type Runner interface {
	Invoke(ctx context.Context, in model.TurnInput) (*model.TurnResult, error)
}

// Config holds everything needed to compose the order graph end-to-end.
// This is a convenience layer over GraphConfig that also constructs the Gemini models.
type Config struct {
	APIKey        string
	BaseURL       string
	OrderModel    model.OrderModelConfig
	Transcription model.TranscriptionConfig
	OrderPrompt   model.OrderPromptConfig
	Conversation  model.ConversationConfig
	Catalog       nodes.CatalogView
	Dialogue      nodes.Dialogue
}

// GraphConfig holds all configuration needed to build the graph
type GraphConfig struct {
	ChatModel       einomodel.BaseChatModel
	ModelName       string
	Transcriber     nodes.Transcriber
	MessagesManager *conversations.MessagesManager
	Catalog         nodes.CatalogView
	Dialogue        nodes.Dialogue
	PromptConfig    *model.OrderPromptConfig
}

// GraphBuilder handles the construction of the order turn graph
type GraphBuilder struct {
	config *GraphConfig
	graph  *compose.Graph[model.TurnInput, *model.TurnResult]
}

type graphRunner struct {
	runnable compose.Runnable[model.TurnInput, *model.TurnResult]
}

func (r *graphRunner) Invoke(ctx context.Context, in model.TurnInput) (*model.TurnResult, error) {
	out, err := r.runnable.Invoke(ctx, in, compose.WithCallbacks(observers.NewAllCallbacks()))
	if err != nil {
		return nil, errx.WrapUpstream(err)
	}
	if out == nil {
		return nil, fmt.Errorf("order graph returned no result")
	}
	return out, nil
}

// BuildOrderGraph creates the Gemini models, builds the graph, and returns a Runner.
func BuildOrderGraph(ctx context.Context, cfg Config) (Runner, error) {
	cms, err := nodes.NewChatModels(ctx, nodes.ChatModelConfig{
		APIKey:        cfg.APIKey,
		BaseURL:       cfg.BaseURL,
		OrderConfig:   &cfg.OrderModel,
		Transcription: &cfg.Transcription,
	})
	if err != nil {
		return nil, err
	}

	runner, err := NewRunner(ctx, &GraphConfig{
		ChatModel:       cms.Order,
		ModelName:       cms.OrderModelName,
		Transcriber:     cms.Transcriber,
		MessagesManager: conversations.NewMessagesManager(cfg.Conversation),
		Catalog:         cfg.Catalog,
		Dialogue:        cfg.Dialogue,
		PromptConfig:    &cfg.OrderPrompt,
	})
	if err != nil {
		return nil, err
	}

	logx.Debug().Str("model", cms.OrderModelName).Msg("Order graph built successfully")
	return runner, nil
}

// NewRunner compiles the graph from already constructed components.
func NewRunner(ctx context.Context, config *GraphConfig) (Runner, error) {
	runnable, err := BuildGraph(ctx, config)
	if err != nil {
		return nil, err
	}
	return &graphRunner{runnable: runnable}, nil
}

// BuildGraph constructs and returns the compiled order graph
func BuildGraph(ctx context.Context, config *GraphConfig) (compose.Runnable[model.TurnInput, *model.TurnResult], error) {
	if config == nil {
		return nil, fmt.Errorf("graph config is nil")
	}
	if config.ChatModel == nil || config.Transcriber == nil {
		return nil, fmt.Errorf("chat models are not properly initialized")
	}
	if config.MessagesManager == nil {
		return nil, fmt.Errorf("messages manager is nil")
	}
	if config.Catalog == nil || config.Dialogue == nil {
		return nil, fmt.Errorf("catalog or dialogue is nil")
	}
	if config.PromptConfig == nil {
		return nil, fmt.Errorf("prompt config is nil")
	}

	builder := &GraphBuilder{
		config: config,
		graph: compose.NewGraph[model.TurnInput, *model.TurnResult](
			compose.WithGenLocalState(func(ctx context.Context) *model.AppState {
				return &model.AppState{}
			}),
		),
	}

	if err := builder.addNodes(); err != nil {
		return nil, err
	}
	if err := builder.addEdges(); err != nil {
		return nil, err
	}

	return builder.compile(ctx)
}

// addNodes adds all processing nodes to the graph
func (b *GraphBuilder) addNodes() error {
	steps := []struct {
		name string
		add  func() error
	}{
		{nodes.NodeTranscriber, func() error {
			return b.graph.AddLambdaNode(nodes.NodeTranscriber, nodes.NewTranscriberNode(b.config.Transcriber))
		}},
		{nodes.NodeInputConverter, func() error {
			return b.graph.AddLambdaNode(nodes.NodeInputConverter,
				nodes.NewInputConverterNode(b.config.MessagesManager, b.config.Catalog, b.config.PromptConfig),
				compose.WithStatePreHandler(nodes.NewInputConverterPreHandler()),
			)
		}},
		{nodes.NodeOrderChatModel, func() error {
			return b.graph.AddChatModelNode(nodes.NodeOrderChatModel, b.config.ChatModel,
				compose.WithStatePostHandler(nodes.NewOrderChatModelPostHandler(b.config.ModelName)),
			)
		}},
		{nodes.NodeInterpreter, func() error {
			return b.graph.AddLambdaNode(nodes.NodeInterpreter,
				nodes.NewInterpreterNode(),
				compose.WithStatePostHandler(nodes.NewInterpreterPostHandler()),
			)
		}},
		{nodes.NodeDialogue, func() error {
			return b.graph.AddLambdaNode(nodes.NodeDialogue, nodes.NewDialogueNode(b.config.Dialogue))
		}},
	}

	for _, s := range steps {
		if err := s.add(); err != nil {
			logx.Error().Err(err).Str("node", s.name).Msg("Error adding node")
			return fmt.Errorf("error adding node %s: %w", s.name, err)
		}
	}
	return nil
}

// addEdges creates the main flow connections between nodes
func (b *GraphBuilder) addEdges() error {
	edges := [][2]string{
		{compose.START, nodes.NodeTranscriber},
		{nodes.NodeTranscriber, nodes.NodeInputConverter},
		{nodes.NodeInputConverter, nodes.NodeOrderChatModel},
		{nodes.NodeOrderChatModel, nodes.NodeInterpreter},
		{nodes.NodeInterpreter, nodes.NodeDialogue},
		{nodes.NodeDialogue, compose.END},
	}

	for _, edge := range edges {
		if err := b.graph.AddEdge(edge[0], edge[1]); err != nil {
			logx.Error().Err(err).Str("from", edge[0]).Str("to", edge[1]).Msg("Error adding edge")
			return fmt.Errorf("error adding edge %s -> %s: %w", edge[0], edge[1], err)
		}
	}
	return nil
}

// compile finalizes and compiles the graph
func (b *GraphBuilder) compile(ctx context.Context) (compose.Runnable[model.TurnInput, *model.TurnResult], error) {
	runnable, err := b.graph.Compile(ctx, compose.WithMaxRunSteps(maxRunSteps))
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Msg("Graph compiled successfully")
	return runnable, nil
}
