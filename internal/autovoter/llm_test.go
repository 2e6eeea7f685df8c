package autovoter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *ChatClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewChatClient("test-key", "gpt-4o-mini", srv.URL)
}

func completionBody(text string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": text}},
		},
	})
	return string(b)
}

func TestChatClientComplete(t *testing.T) {
	var gotReq chatRequest
	var gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Write([]byte(completionBody("  なるほど、面白い質問ですね。\n")))
	})

	text, err := client.Complete(context.Background(), "コメントして")
	require.NoError(t, err)
	assert.Equal(t, "なるほど、面白い質問ですね。", text)

	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "gpt-4o-mini", gotReq.Model)
	assert.Equal(t, 0.9, gotReq.Temperature)
	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, "user", gotReq.Messages[0].Role)
	assert.Equal(t, "コメントして", gotReq.Messages[0].Content)
}

func TestChatClientMissingKey(t *testing.T) {
	client := NewChatClient("", "", "")
	_, err := client.Complete(context.Background(), "p")
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestChatClientNon2xxStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"message": "rate_limited"}}`))
	})

	_, err := client.Complete(context.Background(), "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OpenAI APIエラー (status: 429)")
	assert.Contains(t, err.Error(), "rate_limited")
}

func TestChatClientErrorFieldOn200(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": {"message": "insufficient_quota"}}`))
	})

	_, err := client.Complete(context.Background(), "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient_quota")
}

func TestChatClientEmptyChoices(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	})

	_, err := client.Complete(context.Background(), "p")
	assert.EqualError(t, err, "OpenAI APIレスポンスにchoicesがありません")
}

func TestChatClientBlankCompletion(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(completionBody("   \n ")))
	})

	_, err := client.Complete(context.Background(), "p")
	assert.EqualError(t, err, "コメントテキストが空です")
}

func TestRenderCommentPromptFirstOccurrenceOnly(t *testing.T) {
	tmpl := "質問「{$question}」と{$question}について、選択肢は{$choices}。本文: {$content}"
	got := RenderCommentPrompt(tmpl, "犬派？猫派？", "どちらが好きですか", "「犬」、「猫」")

	assert.Equal(t, "質問「犬派？猫派？」と{$question}について、選択肢は「犬」、「猫」。本文: どちらが好きですか", got)
}

func TestRenderReplyPrompt(t *testing.T) {
	tmpl := "{$comment}への返信。質問: {$question} ({$choices})"
	got := RenderReplyPrompt(tmpl, "私は犬派です", "犬派？猫派？", "本文", "「犬」、「猫」")

	assert.Equal(t, "私は犬派ですへの返信。質問: 犬派？猫派？ (「犬」、「猫」)", got)
}

func TestRenderPromptMissingTags(t *testing.T) {
	assert.Equal(t, "タグなしテンプレート", RenderCommentPrompt("タグなしテンプレート", "t", "c", "ch"))
}

func TestChoicesText(t *testing.T) {
	assert.Equal(t, "「犬」、「猫」、「どちらでもない」", ChoicesText([]string{"犬", "猫", "どちらでもない"}))
	assert.Equal(t, "「はい」", ChoicesText([]string{"はい"}))
	assert.Equal(t, "", ChoicesText(nil))
}
