package services

import (
	"encoding/json"
	"fmt"
	"log"
)

const judgeMaxAttempts = 3

// Combined score bounds: three sub-ratings (humor, creativity, chemistry),
// each in [-10, 10], summed by the model.
const (
	minCombinedScore = -30.0
	maxCombinedScore = 30.0
)

// JudgeResult is the structured output the judge must produce: a short
// in-character reply plus the summed affect rating of the user's last message.
type JudgeResult struct {
	Message string  `json:"message"`
	Scores  float64 `json:"scores"`
}

// JudgeService wraps the LLM call that replies in character and scores the
// user's latest message. The call is slow (seconds) and must only ever run
// from the async response task, never on the send path.
type JudgeService struct {
	llm *LLMClient
}

func NewJudgeService(llm *LLMClient) *JudgeService {
	return &JudgeService{llm: llm}
}

func (s *JudgeService) IsAvailable() bool {
	return s.llm.IsAvailable()
}

// Judge sends the prompt and retries up to 3 attempts when the model returns
// something that is not valid JSON, misses a field, or rates outside the
// allowed range. After the retry budget is spent the last error is returned
// and the caller records no AI turn.
func (s *JudgeService) Judge(prompt string) (*JudgeResult, error) {
	var lastErr error

	for attempt := 1; attempt <= judgeMaxAttempts; attempt++ {
		content, err := s.llm.Complete([]chatMessage{
			{Role: "user", Content: prompt},
		}, 0)
		if err != nil {
			lastErr = err
			log.Printf("[Judge] attempt %d/%d failed: %v", attempt, judgeMaxAttempts, err)
			continue
		}

		result, err := parseJudgeResult(content)
		if err != nil {
			lastErr = err
			log.Printf("[Judge] attempt %d/%d returned bad output: %v", attempt, judgeMaxAttempts, err)
			continue
		}

		return result, nil
	}

	return nil, fmt.Errorf("judge failed after %d attempts: %w", judgeMaxAttempts, lastErr)
}

func parseJudgeResult(content string) (*JudgeResult, error) {
	var result JudgeResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, fmt.Errorf("judge returned invalid JSON: %w", err)
	}
	if result.Message == "" {
		return nil, fmt.Errorf("judge returned empty message")
	}
	if result.Scores < minCombinedScore || result.Scores > maxCombinedScore {
		return nil, fmt.Errorf("judge score %.1f outside [%.0f, %.0f]", result.Scores, minCombinedScore, maxCombinedScore)
	}
	return &result, nil
}
