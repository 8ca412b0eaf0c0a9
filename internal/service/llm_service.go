package service

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"flight-rag/pkg/config"

	"github.com/Role1776/gigago"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type LLMService struct {
	client      *gigago.Client
	model       *gigago.GenerativeModel
	config      *config.GigaChatConfig
	logger      *zap.Logger
	httpClient  *http.Client
	baseURL     string
	accessToken string // cached token for direct REST calls (embeddings)
}

// buildSystemInstruction defines the assistant's role and guardrails.
// Answers must come from retrieved context; data gaps and off-topic
// questions get fixed fallback phrasings so behavior stays predictable.
func buildSystemInstruction() string {
	return `You are a professional and courteous flight booking assistant designed to assist with travel-related inquiries. Your task is to provide accurate and relevant responses based on the retrieved context.

### Instructions:
- Use the provided context to answer questions accurately.
- Incorporate the chat history to maintain context and ensure coherent, context-aware responses across the conversation.
- Respond only when all required inputs (question, context, and chat history) are available; otherwise, politely decline with: "Insufficient data to respond. Please provide more details or check the context."

### Guidelines:
- If the question pertains to flights (e.g., routes, cheapest tickets, no layovers, specific dates, airlines), first check if the context provides matching details. If yes, deliver precise information.
- If the question is a flight or travel query but the context lacks specific matches, respond transparently: "I don't have current details for flights from [origin] to [destination] in my data, which focuses on select international routes. For real-time options, check Emirates or PIA - direct flights often run $200-400 USD. How else can I assist with your trip?"
- If the question relates to travel policies or visas, provide relevant details from the context if available, or suggest: "Based on my data, [brief summary if possible]; for the latest, visit official embassy sites."
- If the question is truly off-topic or unrelated to travel (e.g., weather, recipes, personal advice), respond politely with: "I'm here to assist with flights and travel-related topics - please ask about tickets, visas, or other travel queries!"
- Keep responses concise, professional, and directly addressing the question, avoiding unnecessary elaboration, assumptions, or opinions. Always end with an open invitation like "What else can I help with?"
- If the context is insufficient for any reason, acknowledge it with: "I don't have enough information to answer fully based on current data. Please rephrase or provide more details for better assistance."

### Guardrails:
- Do not generate content that is offensive, inappropriate, or outside the scope of travel assistance.
- Avoid speculative answers or fabricating details; if unsure, admit limitations and redirect to the user's travel focus.
- Do not store or reference personal user data beyond the current chat history.`
}

func NewLLMService(cfg *config.GigaChatConfig, logger *zap.Logger) (*LLMService, error) {
	ctx := context.Background()

	opts := []gigago.Option{
		gigago.WithCustomScope(cfg.Scope),
	}
	if cfg.InsecureSkipVerify {
		opts = append(opts, gigago.WithCustomInsecureSkipVerify(true))
		logger.Warn("GigaChat TLS certificate verification is disabled")
	}

	client, err := gigago.NewClient(ctx, cfg.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GigaChat client: %w", err)
	}

	model := client.GenerativeModel("GigaChat")
	model.SystemInstruction = buildSystemInstruction()
	model.Temperature = 0.7

	httpClient := &http.Client{}
	if cfg.InsecureSkipVerify {
		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	// The embeddings endpoint is not covered by gigago, so REST calls
	// need their own OAuth token.
	accessToken, err := getAccessToken(ctx, cfg, httpClient, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to get access token: %w", err)
	}

	return &LLMService{
		client:      client,
		model:       model,
		config:      cfg,
		logger:      logger,
		httpClient:  httpClient,
		accessToken: accessToken,
		baseURL:     "https://gigachat.devices.sberbank.ru/api/v1",
	}, nil
}

// getAccessToken obtains an access token from the GigaChat OAuth endpoint.
// The API key is expected to already be Base64-encoded.
func getAccessToken(ctx context.Context, cfg *config.GigaChatConfig, httpClient *http.Client, logger *zap.Logger) (string, error) {
	oauthURL := "https://ngw.devices.sberbank.ru:9443/api/v2/oauth"

	formData := url.Values{}
	formData.Set("scope", cfg.Scope)

	req, err := http.NewRequestWithContext(ctx, "POST", oauthURL, strings.NewReader(formData.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create OAuth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("RqUID", uuid.New().String())
	req.Header.Set("Authorization", "Basic "+cfg.APIKey)

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to get access token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("OAuth failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var oauthResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&oauthResp); err != nil {
		return "", fmt.Errorf("failed to decode OAuth response: %w", err)
	}
	if oauthResp.AccessToken == "" {
		return "", fmt.Errorf("empty access token in OAuth response")
	}

	logger.Info("Access token obtained", zap.Int("expires_in", oauthResp.ExpiresIn))
	return oauthResp.AccessToken, nil
}

// Generate sends the assembled prompt to the model and returns its answer.
func (s *LLMService) Generate(ctx context.Context, prompt string) (string, error) {
	messages := []gigago.Message{
		{Role: gigago.RoleUser, Content: prompt},
	}

	resp, err := s.model.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from LLM")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// EmbedDocuments computes embedding vectors for the given texts via the
// GigaChat embeddings endpoint. On 401 the token is refreshed once and the
// request retried.
func (s *LLMService) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vectors, err := s.embed(ctx, texts)
	if err == nil {
		return vectors, nil
	}
	if !isUnauthorized(err) {
		return nil, err
	}

	accessToken, refreshErr := getAccessToken(ctx, s.config, s.httpClient, s.logger)
	if refreshErr != nil {
		return nil, fmt.Errorf("embeddings failed with 401, token refresh also failed: %w", refreshErr)
	}
	s.accessToken = accessToken
	return s.embed(ctx, texts)
}

// EmbedQuery computes an embedding vector for a single query string.
func (s *LLMService) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("no embedding returned for query")
	}
	return vectors[0], nil
}

type unauthorizedError struct{ body string }

func (e *unauthorizedError) Error() string {
	return fmt.Sprintf("embeddings request unauthorized: %s", e.body)
}

func isUnauthorized(err error) bool {
	_, ok := err.(*unauthorizedError)
	return ok
}

func (s *LLMService) embed(ctx context.Context, texts []string) ([][]float32, error) {
	requestBody := map[string]interface{}{
		"model": s.config.EmbeddingModel,
		"input": texts,
	}
	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/embeddings", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.accessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, &unauthorizedError{body: string(bodyBytes)}
	}
	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("embeddings API failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var embedResp struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, fmt.Errorf("failed to decode embeddings response: %w", err)
	}
	if len(embedResp.Data) != len(texts) {
		return nil, fmt.Errorf("embeddings API returned %d vectors for %d inputs", len(embedResp.Data), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for _, item := range embedResp.Data {
		if item.Index < 0 || item.Index >= len(vectors) {
			return nil, fmt.Errorf("embeddings API returned out-of-range index %d", item.Index)
		}
		vectors[item.Index] = item.Embedding
	}
	return vectors, nil
}

func (s *LLMService) Close() error {
	if s.client != nil {
		s.client.Close()
	}
	return nil
}
