package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/gage-technologies/mistral-go"
	"go.uber.org/zap"

	"senti_ttt/internal/adapters"
)

const (
	llmTemperature = 0.1
	llmMaxTokens   = 50
)

type LlmRepo struct {
	adapter *adapters.LlmAdapter
	log     *zap.SugaredLogger
}

func NewLlmRepository(adapter *adapters.LlmAdapter, log *zap.SugaredLogger) *LlmRepo {
	return &LlmRepo{adapter: adapter, log: log}
}

// SendRequestToLlm returns the first completion choice. The client call itself
// takes no context, so an expired ctx abandons the call.
func (l *LlmRepo) SendRequestToLlm(ctx context.Context, request string) (string, error) {
	params := mistral.DefaultChatRequestParams
	params.Temperature = llmTemperature
	params.MaxTokens = llmMaxTokens

	type reply struct {
		text string
		err  error
	}
	ch := make(chan reply, 1)
	go func() {
		res, err := l.adapter.Client.Chat(l.adapter.Model, []mistral.ChatMessage{{Content: request, Role: mistral.RoleUser}}, &params)
		if err != nil {
			ch <- reply{err: err}
			return
		}
		if len(res.Choices) == 0 {
			ch <- reply{err: errors.New("llm returned no choices")}
			return
		}
		ch <- reply{text: fmt.Sprintf("%v", res.Choices[0].Message.Content)}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			l.log.Errorw("send request to llm", "error", r.err)
			return "", fmt.Errorf("send request to llm: %w", r.err)
		}
		return r.text, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
