package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"

	"docuquery/internal/ai"
	"docuquery/internal/config"
	"docuquery/internal/model"
	"docuquery/internal/storage"
)

const (
	defaultChunkSize    = 512
	defaultChunkOverlap = 64
	defaultTopK         = 5
	embeddingBatchSize  = 10 // hosted embedding APIs often cap batch size
)

var (
	ErrTextNotFound       = errors.New("extracted text not found")
	ErrModelNotConfigured = errors.New("model API key not set")
)

// ModelClient is the slice of the hosted-model client the QA service needs.
// Satisfied by *ai.Client.
type ModelClient interface {
	Complete(ctx context.Context, cfg ai.ChatConfig, messages []ai.ChatMessage) (string, error)
	Embed(ctx context.Context, cfg ai.EmbeddingConfig, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, cfg ai.EmbeddingConfig, texts []string) ([][]float32, error)
}

// QuestionStore is the slice of the question repository the QA service needs.
type QuestionStore interface {
	Create(question *model.Question) error
	ListByUserEmailAndFilename(email, filename string) ([]model.Question, error)
}

// HistoryCache fronts qna-history reads. Satisfied by *cache.HistoryCache;
// nil disables caching.
type HistoryCache interface {
	GetHistory(ctx context.Context, email, filename string) ([]model.Question, bool, error)
	SetHistory(ctx context.Context, email, filename string, questions []model.Question) error
	DeleteHistory(ctx context.Context, email, filename string) error
}

// QAService answers questions against a document's extracted text. The
// retrieval index is rebuilt in memory for every ask: the whole document is
// re-chunked and re-embedded, and nothing survives the request.
type QAService struct {
	questions QuestionStore
	blobs     BlobStore
	llm       ModelClient
	llmConfig config.LLMConfig
	history   HistoryCache
}

func NewQAService(questions QuestionStore, blobs BlobStore, llm ModelClient, llmConfig config.LLMConfig, history HistoryCache) *QAService {
	return &QAService{
		questions: questions,
		blobs:     blobs,
		llm:       llm,
		llmConfig: llmConfig,
		history:   history,
	}
}

type AskResult struct {
	Filename string `json:"filename"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Ask fetches the extracted text, retrieves the most relevant chunks for the
// question, prompts the chat model, and records the exchange. The stored
// answer is the returned answer.
func (s *QAService) Ask(ctx context.Context, email, filename, question string) (*AskResult, error) {
	email = strings.TrimSpace(email)
	filename = strings.TrimSpace(filename)
	question = strings.TrimSpace(question)
	if email == "" || filename == "" || question == "" {
		return nil, ErrInvalidInput
	}

	data, err := s.blobs.Get(ctx, storage.TextKey(email, filename))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, ErrTextNotFound
		}
		return nil, err
	}
	content := string(data)

	if s.llmConfig.APIKey == "" {
		return nil, ErrModelNotConfigured
	}
	embConfig := ai.EmbeddingConfig{
		BaseURL: s.llmConfig.BaseURL,
		APIKey:  s.llmConfig.APIKey,
		Model:   s.llmConfig.EmbeddingModel,
	}
	chatConfig := ai.ChatConfig{
		BaseURL: s.llmConfig.BaseURL,
		APIKey:  s.llmConfig.APIKey,
		Model:   s.llmConfig.Model,
	}

	chunks := chunkText(content, defaultChunkSize, defaultChunkOverlap)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("document %q has no extractable text", filename)
	}

	var embeddings [][]float32
	for i := 0; i < len(chunks); i += embeddingBatchSize {
		end := i + embeddingBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batched, err := s.llm.EmbedBatch(ctx, embConfig, chunks[i:end])
		if err != nil {
			return nil, err
		}
		embeddings = append(embeddings, batched...)
	}
	if len(embeddings) != len(chunks) {
		return nil, fmt.Errorf("embedding count mismatch: %d chunks, %d vectors", len(chunks), len(embeddings))
	}

	queryEmb, err := s.llm.Embed(ctx, embConfig, question)
	if err != nil {
		return nil, err
	}

	selected := topKChunks(chunks, embeddings, queryEmb, defaultTopK)

	answer, err := s.llm.Complete(ctx, chatConfig, buildPrompt(selected, question))
	if err != nil {
		return nil, err
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil, fmt.Errorf("model returned an empty answer")
	}

	record := &model.Question{
		UserEmail: email,
		Filename:  filename,
		Question:  question,
		Answer:    answer,
	}
	if err := s.questions.Create(record); err != nil {
		return nil, err
	}

	if s.history != nil {
		if err := s.history.DeleteHistory(ctx, email, filename); err != nil {
			log.Printf("invalidate history cache failed: %v", err)
		}
	}

	return &AskResult{
		Filename: filename,
		Question: question,
		Answer:   answer,
	}, nil
}

// History returns the Q&A records for one document, newest first, serving
// from the cache when fresh.
func (s *QAService) History(ctx context.Context, email, filename string) ([]model.Question, error) {
	email = strings.TrimSpace(email)
	filename = strings.TrimSpace(filename)
	if email == "" || filename == "" {
		return nil, ErrInvalidInput
	}

	if s.history != nil {
		cached, hit, err := s.history.GetHistory(ctx, email, filename)
		if err != nil {
			log.Printf("read history cache failed: %v", err)
		} else if hit {
			return cached, nil
		}
	}

	questions, err := s.questions.ListByUserEmailAndFilename(email, filename)
	if err != nil {
		return nil, err
	}

	if s.history != nil {
		if err := s.history.SetHistory(ctx, email, filename, questions); err != nil {
			log.Printf("fill history cache failed: %v", err)
		}
	}
	return questions, nil
}

func buildPrompt(chunks []string, question string) []ai.ChatMessage {
	var contextBlock strings.Builder
	for _, c := range chunks {
		contextBlock.WriteString("\n---\n")
		contextBlock.WriteString(c)
	}
	contextBlock.WriteString("\n---")

	system := "You are a helpful assistant. Answer the user's question based only on the following context. If the context does not contain enough information, say so. Do not make up facts."
	user := "Context:" + contextBlock.String() + "\n\nQuestion: " + question + "\n\nAnswer:"

	return []ai.ChatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}
}

// chunkText splits text into overlapping chunks by rune count. Windows that
// are all whitespace are dropped here: the embedding client skips blank
// inputs, so letting them through would desync chunks from their vectors.
func chunkText(text string, size, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if size <= 0 {
		size = defaultChunkSize
	}
	if overlap >= size {
		overlap = size / 2
	}
	var chunks []string
	runes := []rune(text)
	for i := 0; i < len(runes); {
		end := i + size
		if end > len(runes) {
			end = len(runes)
		}
		if chunk := string(runes[i:end]); strings.TrimSpace(chunk) != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(runes) {
			break
		}
		i += size - overlap
	}
	return chunks
}

func topKChunks(chunks []string, embeddings [][]float32, query []float32, k int) []string {
	type scored struct {
		chunk string
		score float32
	}
	all := make([]scored, len(chunks))
	for i := range chunks {
		all[i] = scored{chunk: chunks[i], score: cosineSimilarity(query, embeddings[i])}
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].score > all[j].score
	})
	if k > len(all) {
		k = len(all)
	}
	selected := make([]string, k)
	for i := 0; i < k; i++ {
		selected[i] = all[i].chunk
	}
	return selected
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA <= 0 || normB <= 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
