package client

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// fakeAPI scripts chat completion responses for the adapter.
type fakeAPI struct {
	calls   int
	handler func(call int) (openai.ChatCompletionResponse, error)
}

func (f *fakeAPI) CreateChatCompletion(_ context.Context, _ openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.calls++
	return f.handler(f.calls)
}

func chatResponse(content string, promptTokens, completionTokens int) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: content}},
		},
		Usage: openai.Usage{PromptTokens: promptTokens, CompletionTokens: completionTokens},
	}
}

func testRequest() BatchRequest {
	return BatchRequest{
		SourceLang:   "en",
		TargetLang:   "ru",
		TargetName:   "Russian",
		Model:        "gpt-4o-mini",
		SystemPrompt: "translate",
		Nplurals:     3,
		Items: []Item{
			{Text: "Hello"},
			{Text: "%d file", PluralText: "%d files"},
		},
	}
}

func TestTranslateBatch(t *testing.T) {
	fake := &fakeAPI{handler: func(int) (openai.ChatCompletionResponse, error) {
		return chatResponse(`["Привет", ["%d файл", "%d файла", "%d файлов"]]`, 120, 60), nil
	}}
	c := &OpenAI{api: fake}

	res, err := c.TranslateBatch(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("TranslateBatch: %v", err)
	}
	if len(res.Translations) != 2 {
		t.Fatalf("got %d translations", len(res.Translations))
	}
	if got := res.Translations[0].Forms; len(got) != 1 || got[0] != "Привет" {
		t.Errorf("singular forms = %v", got)
	}
	if got := res.Translations[1].Forms; len(got) != 3 || got[2] != "%d файлов" {
		t.Errorf("plural forms = %v", got)
	}
	if res.Usage.PromptTokens != 120 || res.Usage.CompletionTokens != 60 {
		t.Errorf("usage = %+v", res.Usage)
	}
	if res.Usage.Cost <= 0 {
		t.Errorf("cost = %v, want positive", res.Usage.Cost)
	}
}

func TestTranslateBatchMarkdownFence(t *testing.T) {
	content := "```json\n[\"Привет\", [\"а\", \"б\", \"в\"]]\n```"
	fake := &fakeAPI{handler: func(int) (openai.ChatCompletionResponse, error) {
		return chatResponse(content, 10, 10), nil
	}}
	c := &OpenAI{api: fake}

	res, err := c.TranslateBatch(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("TranslateBatch: %v", err)
	}
	if res.Translations[0].Forms[0] != "Привет" {
		t.Errorf("fenced response not parsed: %v", res.Translations)
	}
}

func TestTranslateBatchCountMismatch(t *testing.T) {
	fake := &fakeAPI{handler: func(int) (openai.ChatCompletionResponse, error) {
		return chatResponse(`["only one"]`, 10, 5), nil
	}}
	c := &OpenAI{api: fake}

	res, err := c.TranslateBatch(context.Background(), testRequest())
	if !errors.Is(err, ErrBadResponse) {
		t.Fatalf("err = %v, want ErrBadResponse", err)
	}
	if res.Usage.PromptTokens != 10 {
		t.Error("usage must survive a parse failure")
	}
	if !IsRetryable(err) {
		t.Error("malformed responses must be retryable")
	}
}

func TestTranslateBatchPadsShortPlural(t *testing.T) {
	fake := &fakeAPI{handler: func(int) (openai.ChatCompletionResponse, error) {
		return chatResponse(`["Привет", ["%d файл", "%d файла"]]`, 10, 10), nil
	}}
	c := &OpenAI{api: fake}

	res, err := c.TranslateBatch(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("TranslateBatch: %v", err)
	}
	got := res.Translations[1].Forms
	if len(got) != 3 || got[2] != "%d файла" {
		t.Errorf("forms = %v, want last form repeated", got)
	}
}

func TestMarshalItems(t *testing.T) {
	payload, err := marshalItems([]Item{
		{Text: "Hello"},
		{Text: "Open", Context: "menu", Comments: []string{"A verb."}},
		{Text: "%d file", PluralText: "%d files"},
	})
	if err != nil {
		t.Fatalf("marshalItems: %v", err)
	}
	want := `["Hello",{"text":"Open","context":"menu","notes":["A verb."]},{"one":"%d file","other":"%d files"}]`
	if payload != want {
		t.Errorf("payload = %s", payload)
	}
}

func TestAuthErrorClassification(t *testing.T) {
	fake := &fakeAPI{handler: func(int) (openai.ChatCompletionResponse, error) {
		return openai.ChatCompletionResponse{}, &openai.APIError{HTTPStatusCode: 401, Message: "bad key"}
	}}
	c := &OpenAI{api: fake}

	_, err := c.TranslateBatch(context.Background(), testRequest())
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("err = %v, want *AuthError", err)
	}
	if IsRetryable(err) {
		t.Error("auth errors must not be retryable")
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limit", &openai.APIError{HTTPStatusCode: 429}, true},
		{"server error", &openai.APIError{HTTPStatusCode: 500}, true},
		{"bad request", &openai.APIError{HTTPStatusCode: 400}, false},
		{"auth", &AuthError{Status: 403}, false},
		{"canceled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, true},
		{"bad response", ErrBadResponse, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRetryPolicyExhaustsAttempts(t *testing.T) {
	calls := 0
	retries := 0
	p := RetryPolicy{
		MaxRetries: 3,
		Delay:      time.Millisecond,
		OnRetry:    func(int, error) { retries++ },
		sleep:      func(context.Context, time.Duration) error { return nil },
	}

	err := p.Do(context.Background(), func() error {
		calls++
		return &openai.APIError{HTTPStatusCode: 500}
	})
	if err == nil {
		t.Fatal("expected failure after exhausting retries")
	}
	if calls != 4 {
		t.Errorf("calls = %d, want MaxRetries+1 = 4", calls)
	}
	if retries != 3 {
		t.Errorf("retry notifications = %d, want 3", retries)
	}
}

func TestRetryPolicyStopsOnAuthError(t *testing.T) {
	calls := 0
	p := RetryPolicy{
		MaxRetries: 3,
		Delay:      time.Millisecond,
		sleep:      func(context.Context, time.Duration) error { return nil },
	}
	err := p.Do(context.Background(), func() error {
		calls++
		return &AuthError{Status: 401, Msg: "nope"}
	})
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("err = %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetryPolicyRecovers(t *testing.T) {
	calls := 0
	p := RetryPolicy{
		MaxRetries: 3,
		Delay:      time.Millisecond,
		sleep:      func(context.Context, time.Duration) error { return nil },
	}
	err := p.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return &openai.APIError{HTTPStatusCode: 429}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDryRunPlaceholders(t *testing.T) {
	d := NewDryRun()
	req := testRequest()

	res, err := d.TranslateBatch(context.Background(), req)
	if err != nil {
		t.Fatalf("TranslateBatch: %v", err)
	}
	if got := res.Translations[0].Forms[0]; got != "[DRY-RUN] Hello" {
		t.Errorf("placeholder = %q", got)
	}
	if !res.Translations[0].DryRun {
		t.Error("dry-run flag not set")
	}
	forms := res.Translations[1].Forms
	if len(forms) != 3 || !strings.HasPrefix(forms[2], "[DRY-RUN] ") {
		t.Errorf("plural placeholders = %v", forms)
	}

	if !res.Usage.DryRun {
		t.Error("dry-run usage record not flagged")
	}
	if want := EstimateBatch(req); res.Usage != want {
		t.Errorf("usage %+v differs from the budget estimate %+v", res.Usage, want)
	}
}

func TestEstimateBatchDeterministic(t *testing.T) {
	req := testRequest()
	a := EstimateBatch(req)
	b := EstimateBatch(req)
	if a != b {
		t.Errorf("estimates differ: %+v vs %+v", a, b)
	}
	if a.Cost <= 0 || a.PromptTokens <= 0 {
		t.Errorf("estimate = %+v, want positive tokens and cost", a)
	}
}
